package table

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table is a columnar result set: ordered column names plus one string
// vector per column. Every vector always has the same length.
type Table struct {
	columns []string
	data    [][]string
}

func New(columns []string) (*Table, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("at least one column is required")
	}
	seen := make(map[string]struct{}, len(columns))
	for _, name := range columns {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("column name must not be empty")
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", name)
		}
		seen[name] = struct{}{}
	}
	return &Table{
		columns: append([]string(nil), columns...),
		data:    make([][]string, len(columns)),
	}, nil
}

func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

func (t *Table) RowCount() int {
	if len(t.data) == 0 {
		return 0
	}
	return len(t.data[0])
}

// AppendRow appends one cell per column, in column order. A row whose
// cell count differs from the column count is rejected so that the
// column vectors never become ragged.
func (t *Table) AppendRow(cells []string) error {
	if len(cells) != len(t.columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.columns))
	}
	for i, cell := range cells {
		t.data[i] = append(t.data[i], cell)
	}
	return nil
}

func (t *Table) Row(i int) ([]string, error) {
	if i < 0 || i >= t.RowCount() {
		return nil, fmt.Errorf("row index %d out of range [0,%d)", i, t.RowCount())
	}
	row := make([]string, len(t.columns))
	for c := range t.columns {
		row[c] = t.data[c][i]
	}
	return row, nil
}

func (t *Table) Column(name string) ([]string, bool) {
	for i, col := range t.columns {
		if col == name {
			return append([]string(nil), t.data[i]...), true
		}
	}
	return nil, false
}

// Render writes an aligned plain-text view of the table.
func (t *Table) Render(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(t.columns, "\t")); err != nil {
		return err
	}
	separators := make([]string, len(t.columns))
	for i, col := range t.columns {
		separators[i] = strings.Repeat("-", len(col))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(separators, "\t")); err != nil {
		return err
	}
	for i := 0; i < t.RowCount(); i++ {
		row, err := t.Row(i)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	for i := 0; i < t.RowCount(); i++ {
		row, err := t.Row(i)
		if err != nil {
			return err
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type jsonTable struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

func (t *Table) WriteJSON(w io.Writer) error {
	rows := make([][]string, 0, t.RowCount())
	for i := 0; i < t.RowCount(); i++ {
		row, err := t.Row(i)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonTable{Columns: t.columns, Rows: rows})
}
