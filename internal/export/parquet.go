// Package export writes materialized query results to local columnar
// files for downstream tooling.
package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/athenactl/athenactl/internal/table"
)

// WriteParquet writes the table to path as a parquet file with one
// optional string column per table column. Cells arrive from the query
// service as strings, so no type inference is attempted.
func WriteParquet(path string, tbl *table.Table) error {
	columns := tbl.Columns()
	group := parquet.Group{}
	for _, name := range columns {
		group[name] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("results", group)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	writer := parquet.NewGenericWriter[map[string]any](f, schema)
	rows := make([]map[string]any, 0, tbl.RowCount())
	for i := 0; i < tbl.RowCount(); i++ {
		row, err := tbl.Row(i)
		if err != nil {
			return err
		}
		record := make(map[string]any, len(columns))
		for c, name := range columns {
			record[name] = row[c]
		}
		rows = append(rows, record)
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %q: %w", path, err)
	}
	return nil
}
