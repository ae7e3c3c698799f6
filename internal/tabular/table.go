package tabular

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Table is an immutable snapshot of tabular data with named columns.
// Cells are strings; the empty string is the absence sentinel. Transform
// helpers return a new Table rather than mutating in place, so a resolved
// column is always built in one full pass over its source.
type Table struct {
	Columns []string
	Rows    [][]string
}

// New creates a Table, padding short rows so every row has one cell per column.
func New(columns []string, rows [][]string) *Table {
	padded := make([][]string, len(rows))
	for i, row := range rows {
		if len(row) < len(columns) {
			p := make([]string, len(columns))
			copy(p, row)
			row = p
		}
		padded[i] = row[:len(columns)]
	}
	return &Table{Columns: columns, Rows: padded}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Col returns the index of the named column, or -1 if not present.
func (t *Table) Col(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool { return t.Col(name) >= 0 }

// Cell returns the cell at (row, column name); empty string if either is
// out of range.
func (t *Table) Cell(row int, name string) string {
	idx := t.Col(name)
	if idx < 0 || row < 0 || row >= len(t.Rows) {
		return ""
	}
	return t.Rows[row][idx]
}

// Column returns a copy of the named column's values, one per row.
// Missing columns yield a column of empty cells.
func (t *Table) Column(name string) []string {
	idx := t.Col(name)
	out := make([]string, len(t.Rows))
	if idx < 0 {
		return out
	}
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out
}

// WithColumn returns a new Table with the named column set to values.
// An existing column of the same name is replaced in place (same position);
// otherwise the column is appended. values must have one entry per row.
func (t *Table) WithColumn(name string, values []string) (*Table, error) {
	if len(values) != len(t.Rows) {
		return nil, eris.Errorf("tabular: column %q has %d values for %d rows", name, len(values), len(t.Rows))
	}

	idx := t.Col(name)
	columns := make([]string, len(t.Columns), len(t.Columns)+1)
	copy(columns, t.Columns)
	if idx < 0 {
		columns = append(columns, name)
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx >= 0 {
			nr := make([]string, len(row))
			copy(nr, row)
			nr[idx] = values[i]
			rows[i] = nr
		} else {
			nr := make([]string, len(row), len(row)+1)
			copy(nr, row)
			rows[i] = append(nr, values[i])
		}
	}

	return &Table{Columns: columns, Rows: rows}, nil
}

// Filter returns a new Table containing only rows for which keep returns true.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	var rows [][]string
	for _, row := range t.Rows {
		if keep(row) {
			rows = append(rows, row)
		}
	}
	return &Table{Columns: t.Columns, Rows: rows}
}

// Select returns a new Table with only the named columns, in the given order.
// Unknown columns are a hard error: a misspelled selection should fail fast
// rather than produce a partially wrong table.
func (t *Table) Select(names []string) (*Table, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx := t.Col(name)
		if idx < 0 {
			return nil, eris.Errorf("tabular: column %q not found (have %s)", name, strings.Join(t.Columns, ", "))
		}
		idxs[i] = idx
	}

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, len(idxs))
		for j, idx := range idxs {
			out[j] = row[idx]
		}
		rows[i] = out
	}

	return &Table{Columns: append([]string(nil), names...), Rows: rows}, nil
}

// RenameColumns returns a new Table with column names rewritten via rename.
func (t *Table) RenameColumns(rename func(string) string) *Table {
	columns := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		columns[i] = rename(c)
	}
	return &Table{Columns: columns, Rows: t.Rows}
}
