// Package table implements an ordered set of equal-length device columns
// and forwards row operations to the compute engine.
package table

import (
	"errors"
	"runtime"
	"time"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/view"
)

// Table is an ordered sequence of columns sharing one row count. The row
// count is fixed at construction.
//
// A Table is not safe for concurrent mutation.
type Table struct {
	cols []*column.Column
	rows int
	o    options
}

// New builds a table from src. Column lengths are validated eagerly; a
// mismatch fails with an *errdefs.LengthMismatchError.
func New(src Source, opts ...Option) (*Table, error) {
	return build(src, applyOptions(opts))
}

func build(src Source, o options) (*Table, error) {
	switch s := src.(type) {
	case columnsSource:
		return fromColumns(s.cols, o)
	case resultsSource:
		t, err := fromResults(s.results, o)
		if err != nil {
			if rerr := compute.ReleaseAll(s.results); rerr != nil {
				o.logger.Error("release of result set failed", "error", rerr)
			}
			return nil, err
		}
		return t, nil
	case nil:
		return nil, errdefs.Argumentf("nil table source")
	}
	return nil, errdefs.Argumentf("unknown table source %T", src)
}

func fromColumns(cols []*column.Column, o options) (*Table, error) {
	t := &Table{cols: make([]*column.Column, len(cols)), o: o}
	for i, c := range cols {
		if c == nil {
			return nil, errdefs.Argumentf("column %d is nil", i)
		}
		if i == 0 {
			t.rows = c.Size()
		} else if c.Size() != t.rows {
			return nil, &errdefs.LengthMismatchError{Column: i, Expected: t.rows, Actual: c.Size()}
		}
		t.cols[i] = c
	}
	return t, nil
}

func fromResults(results []*compute.Result, o options) (*Table, error) {
	cols := make([]*column.Column, len(results))
	for i, r := range results {
		if r == nil {
			return nil, errdefs.Argumentf("result %d is nil", i)
		}
		var opts []column.Option
		if r.Mask != nil {
			opts = append(opts, column.WithNullMask(r.Mask, r.NullCount))
		}
		c, err := column.New(r.Type, r.Length, r.Data, opts...)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return fromColumns(cols, o)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.cols) }

// NumRows returns the shared row count. The empty table has 0 rows.
func (t *Table) NumRows() int { return t.rows }

// Column returns the i-th column itself, not a copy.
func (t *Table) Column(i int) (*column.Column, error) {
	if i < 0 || i >= len(t.cols) {
		return nil, &errdefs.IndexError{What: "column", Index: i, Len: len(t.cols)}
	}
	return t.cols[i], nil
}

// Columns returns the columns in order.
func (t *Table) Columns() []*column.Column {
	out := make([]*column.Column, len(t.cols))
	copy(out, t.cols)
	return out
}

// Engine returns the compute engine the table forwards to.
func (t *Table) Engine() *compute.Engine { return t.o.engine }

// View returns a read-only composition of the column views. It is rebuilt
// on every call.
func (t *Table) View() view.Table {
	cols := make([]view.Column, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.View()
	}
	// Lengths were validated at construction.
	tv, _ := view.NewTable(cols...)
	return tv
}

// MutableView returns a writable composition of the column views.
func (t *Table) MutableView() view.MutableTable {
	cols := make([]view.MutableColumn, len(t.cols))
	for i, c := range t.cols {
		cols[i] = c.MutableView()
	}
	mt, _ := view.NewMutableTable(cols...)
	return mt
}

// Select returns a table over the given columns, in the given order.
// Columns are shared with t.
func (t *Table) Select(indices ...int) (*Table, error) {
	cols := make([]*column.Column, len(indices))
	for i, idx := range indices {
		c, err := t.Column(idx)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return fromColumns(cols, t.o)
}

// Concat returns a table holding the columns of every table side by side.
// Columns are shared with the inputs; all tables must have the same row
// count. The result uses the options of the first table.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return New(FromColumns())
	}
	var cols []*column.Column
	for _, t := range tables {
		cols = append(cols, t.cols...)
	}
	return fromColumns(cols, tables[0].o)
}

// Release frees the buffers of every column. Columns shared with other
// tables through Select or Concat are released for them too.
func (t *Table) Release() error {
	var errs []error
	for _, c := range t.cols {
		if err := c.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// derive wraps a result set in a new table inheriting t's options.
func (t *Table) derive(results []*compute.Result) (*Table, error) {
	return build(FromResults(results...), t.o)
}

// observe reports a finished table operation.
func (t *Table) observe(op string, start time.Time, rows int, err error) {
	d := time.Since(start)
	t.o.metrics.OnTableOp(op, rows, d, err)
	if err != nil {
		t.o.logger.Debug("table operation failed", "op", op, "rows", rows, "error", err)
		return
	}
	t.o.logger.Debug("table operation", "op", op, "rows", rows, "duration", d)
}

// keepAlive keeps the table's buffers reachable until the call returns.
func (t *Table) keepAlive() {
	runtime.KeepAlive(t)
}
