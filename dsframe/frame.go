package dsframe

import (
	"fmt"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"
)

// ColumnType is the declared type of one column. Cells may additionally be
// null regardless of column type.
type ColumnType int

const (
	// Bool columns hold true/false cells.
	Bool ColumnType = iota
	// Int columns hold whole-number cells.
	Int
	// Float columns hold floating-point cells.
	Float
	// String columns hold text cells.
	String
)

func (t ColumnType) String() string {
	switch t {
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "string"
	}
}

// Frame is an eager, fully materialized table: an ordered list of typed
// columns and a list of rows. Frames are not safe for concurrent
// modification; adapters always hand out freshly built frames.
type Frame struct {
	columns []string
	types   []ColumnType
	rows    [][]ldvalue.Value
}

// NewFrame creates an empty frame with the given column names and types.
func NewFrame(columns []string, types []ColumnType) (*Frame, error) {
	if len(columns) != len(types) {
		return nil, fmt.Errorf("frame has %d column names but %d types", len(columns), len(types))
	}
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if seen[c] {
			return nil, fmt.Errorf("duplicate column name %q", c)
		}
		seen[c] = true
	}
	return &Frame{columns: append([]string(nil), columns...), types: append([]ColumnType(nil), types...)}, nil
}

// AppendRow adds a row. The number of cells must match the number of
// columns; cell types are not checked beyond that, since codecs are the
// ones constructing frames and already enforce their own typing.
func (f *Frame) AppendRow(cells ...ldvalue.Value) error {
	if len(cells) != len(f.columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(cells), len(f.columns))
	}
	f.rows = append(f.rows, append([]ldvalue.Value(nil), cells...))
	return nil
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string { return append([]string(nil), f.columns...) }

// Types returns the column types in column order.
func (f *Frame) Types() []ColumnType { return append([]ColumnType(nil), f.types...) }

// NumRows returns the number of rows.
func (f *Frame) NumRows() int { return len(f.rows) }

// NumColumns returns the number of columns.
func (f *Frame) NumColumns() int { return len(f.columns) }

// Cell returns the value at (row, column index).
func (f *Frame) Cell(row, col int) ldvalue.Value { return f.rows[row][col] }

// Row returns a copy of one row.
func (f *Frame) Row(i int) []ldvalue.Value {
	return append([]ldvalue.Value(nil), f.rows[i]...)
}

// ColumnIndex returns the index of a named column, or -1.
func (f *Frame) ColumnIndex(name string) int {
	for i, c := range f.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Head returns a new frame with at most n of the leading rows.
func (f *Frame) Head(n int) *Frame {
	if n > len(f.rows) {
		n = len(f.rows)
	}
	if n < 0 {
		n = 0
	}
	out := &Frame{columns: f.Columns(), types: f.Types()}
	for _, row := range f.rows[:n] {
		out.rows = append(out.rows, append([]ldvalue.Value(nil), row...))
	}
	return out
}

// Select returns a new frame restricted to the named columns, in the order
// given.
func (f *Frame) Select(columns []string) (*Frame, error) {
	idx := make([]int, len(columns))
	types := make([]ColumnType, len(columns))
	for i, c := range columns {
		j := f.ColumnIndex(c)
		if j < 0 {
			return nil, fmt.Errorf("frame has no column %q", c)
		}
		idx[i] = j
		types[i] = f.types[j]
	}
	out := &Frame{columns: append([]string(nil), columns...), types: types}
	for _, row := range f.rows {
		cells := make([]ldvalue.Value, len(idx))
		for i, j := range idx {
			cells[i] = row[j]
		}
		out.rows = append(out.rows, cells)
	}
	return out, nil
}

// Equal reports whether two frames have identical columns, types, and cell
// values in the same order.
func (f *Frame) Equal(other *Frame) bool {
	if other == nil || len(f.columns) != len(other.columns) || len(f.rows) != len(other.rows) {
		return false
	}
	for i := range f.columns {
		if f.columns[i] != other.columns[i] || f.types[i] != other.types[i] {
			return false
		}
	}
	for i := range f.rows {
		for j := range f.rows[i] {
			if !f.rows[i][j].Equal(other.rows[i][j]) {
				return false
			}
		}
	}
	return true
}
