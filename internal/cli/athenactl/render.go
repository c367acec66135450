package athenactl

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/athenactl/athenactl/internal/athena"
	"github.com/athenactl/athenactl/internal/table"
)

func (a *app) renderResult(tbl *table.Table) error {
	if a.format == "json" {
		return tbl.WriteJSON(a.stdout)
	}
	if err := tbl.Render(a.stdout); err != nil {
		return err
	}
	if !a.quiet {
		_, _ = fmt.Fprintf(a.stderr, "%d rows\n", tbl.RowCount())
	}
	return nil
}

func (a *app) renderRows(header []string, rows [][]string) error {
	if a.format == "json" {
		tbl, err := table.New(header)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := tbl.AppendRow(row); err != nil {
				return err
			}
		}
		return tbl.WriteJSON(a.stdout)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func (a *app) renderStatus(status athena.Status) error {
	pairs := [][2]string{
		{"Query ID", status.QueryID},
		{"State", string(status.State)},
	}
	if status.Reason != "" {
		pairs = append(pairs, [2]string{"Reason", status.Reason})
	}
	if status.OutputLocation != "" {
		pairs = append(pairs, [2]string{"Result location", status.OutputLocation})
	}
	if stats := status.Statistics; stats != nil {
		pairs = append(pairs,
			[2]string{"Cache", cacheLabel(stats.CacheHit(), status.State)},
			[2]string{"Data scanned", formatScanned(stats.ScannedBytes, stats.CacheHit())},
			[2]string{"Engine time", stats.EngineTime.String()},
			[2]string{"Queue time", stats.QueueTime.String()},
			[2]string{"Planning time", stats.PlanningTime.String()},
			[2]string{"Total time", stats.TotalTime.String()},
		)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	for _, pair := range pairs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", pair[0], pair[1])
	}
	return tw.Flush()
}

func (a *app) renderTableDetail(detail athena.TableDetail) error {
	_, _ = fmt.Fprintf(a.stdout, "Table: %s.%s\n", detail.Database, detail.Name)
	if detail.Type != "" {
		_, _ = fmt.Fprintf(a.stdout, "Type: %s\n", detail.Type)
	}
	if !detail.CreateTime.IsZero() {
		_, _ = fmt.Fprintf(a.stdout, "Created: %s\n", formatTime(detail.CreateTime))
	}
	if comment, ok := detail.Parameters["comment"]; ok && comment != "" {
		_, _ = fmt.Fprintf(a.stdout, "Description: %s\n", comment)
	}

	if len(detail.Columns) > 0 {
		_, _ = fmt.Fprintln(a.stdout, "\nColumns:")
		if err := writeColumns(a, detail.Columns); err != nil {
			return err
		}
	}
	if len(detail.PartitionKeys) > 0 {
		_, _ = fmt.Fprintln(a.stdout, "\nPartition keys:")
		if err := writeColumns(a, detail.PartitionKeys); err != nil {
			return err
		}
	}
	return nil
}

func writeColumns(a *app, columns []athena.ColumnInfo) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tCOMMENT")
	for _, col := range columns {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", col.Name, col.Type, col.Comment)
	}
	return tw.Flush()
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}

func formatRuntime(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}

func cacheLabel(hit bool, state athena.State) string {
	if state != athena.StateSucceeded {
		return "-"
	}
	if hit {
		return "HIT"
	}
	return "MISS"
}

func formatScanned(bytes int64, cacheHit bool) string {
	if cacheHit || bytes < 0 {
		return "-"
	}
	return humanize.Bytes(uint64(bytes))
}
