package athena

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/athena/types"

	"github.com/athenactl/athenactl/internal/observability"
	"github.com/athenactl/athenactl/internal/table"
)

// Collect walks the paginated result cursor of a succeeded execution and
// stitches the pages into a columnar table. The first row of the first
// page is the column header; every other row contributes one cell per
// column. A result with only a header yields a table with zero rows.
func (e *Engine) Collect(ctx context.Context, queryID string) (*table.Table, error) {
	var tbl *table.Table
	var token *string
	pages := 0

	for {
		out, err := e.Client.GetQueryResults(ctx, &athena.GetQueryResultsInput{
			QueryExecutionId: aws.String(queryID),
			MaxResults:       aws.Int32(e.pageSize()),
			NextToken:        token,
		})
		if err != nil {
			return nil, fmt.Errorf("get query results for %s: %w", queryID, err)
		}

		var rows []types.Row
		if out.ResultSet != nil {
			rows = out.ResultSet.Rows
		}

		if tbl == nil {
			if len(rows) == 0 {
				return nil, fmt.Errorf("query %s: result set has no header row", queryID)
			}
			tbl, err = table.New(cellStrings(rows[0]))
			if err != nil {
				return nil, fmt.Errorf("query %s: %w", queryID, err)
			}
			rows = rows[1:]
		}

		for _, row := range rows {
			if err := tbl.AppendRow(cellStrings(row)); err != nil {
				return nil, fmt.Errorf("query %s: malformed result row: %w", queryID, err)
			}
		}

		pages++
		observability.ObserveResultPage(len(rows))
		e.emit("page %d: %d rows", pages, len(rows))

		if out.NextToken == nil {
			break
		}
		token = out.NextToken
	}

	e.emit("collected %d pages, %d rows", pages, tbl.RowCount())
	return tbl, nil
}

func cellStrings(row types.Row) []string {
	cells := make([]string, len(row.Data))
	for i, datum := range row.Data {
		cells[i] = aws.ToString(datum.VarCharValue)
	}
	return cells
}
