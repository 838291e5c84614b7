package view

import "github.com/mzegar/devframe/errdefs"

// Table is a read-only ordered composition of column views.
type Table struct {
	cols []Column
	rows int
}

// NewTable composes column views. All columns must have the same length.
func NewTable(cols ...Column) (Table, error) {
	t := Table{cols: cols}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Length
			continue
		}
		if c.Length != t.rows {
			return Table{}, &errdefs.LengthMismatchError{Column: i, Expected: t.rows, Actual: c.Length}
		}
	}
	return t, nil
}

// NumColumns returns the number of columns.
func (t Table) NumColumns() int { return len(t.cols) }

// NumRows returns the shared row count, 0 for an empty table.
func (t Table) NumRows() int { return t.rows }

// Column returns the i-th column view.
func (t Table) Column(i int) (Column, error) {
	if i < 0 || i >= len(t.cols) {
		return Column{}, &errdefs.IndexError{What: "column", Index: i, Len: len(t.cols)}
	}
	return t.cols[i], nil
}

// Columns returns the column views in order. The slice must not be modified.
func (t Table) Columns() []Column { return t.cols }

// Validate checks every column for released buffers.
func (t Table) Validate() error {
	for _, c := range t.cols {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// KeepAlive keeps every owning buffer reachable up to this call.
func (t Table) KeepAlive() {
	for _, c := range t.cols {
		c.KeepAlive()
	}
}

// MutableTable is a writable composition of column views.
type MutableTable struct {
	cols []MutableColumn
	rows int
}

// NewMutableTable composes mutable column views. All columns must have the
// same length.
func NewMutableTable(cols ...MutableColumn) (MutableTable, error) {
	t := MutableTable{cols: cols}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Length
			continue
		}
		if c.Length != t.rows {
			return MutableTable{}, &errdefs.LengthMismatchError{Column: i, Expected: t.rows, Actual: c.Length}
		}
	}
	return t, nil
}

// NumColumns returns the number of columns.
func (t MutableTable) NumColumns() int { return len(t.cols) }

// NumRows returns the shared row count.
func (t MutableTable) NumRows() int { return t.rows }

// Column returns the i-th mutable column view.
func (t MutableTable) Column(i int) (MutableColumn, error) {
	if i < 0 || i >= len(t.cols) {
		return MutableColumn{}, &errdefs.IndexError{What: "column", Index: i, Len: len(t.cols)}
	}
	return t.cols[i], nil
}

// Columns returns the mutable column views in order.
func (t MutableTable) Columns() []MutableColumn { return t.cols }

// ReadOnly returns the read-only composition of the same columns.
func (t MutableTable) ReadOnly() Table {
	cols := make([]Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.Column
	}
	return Table{cols: cols, rows: t.rows}
}

// Validate checks every column for released buffers.
func (t MutableTable) Validate() error {
	return t.ReadOnly().Validate()
}

// KeepAlive keeps every owning buffer reachable up to this call.
func (t MutableTable) KeepAlive() {
	for _, c := range t.cols {
		c.KeepAlive()
	}
}
