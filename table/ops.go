package table

import (
	"context"
	"fmt"
	"time"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/errdefs"
)

// OrderBy returns the permutation that stably sorts the rows by every
// column in table order. ascending and nullsBefore hold one flag per
// column; nullsBefore treats nulls as smaller than every value. The result
// is a new SizeType column without nulls.
func (t *Table) OrderBy(ctx context.Context, ascending, nullsBefore []bool) (_ *column.Column, err error) {
	start := time.Now()
	defer func() { t.observe("order_by", start, t.rows, err) }()

	if len(ascending) != len(nullsBefore) {
		return nil, errdefs.Invariantf("ascending and null order must be the same size: %d != %d",
			len(ascending), len(nullsBefore))
	}
	if n := len(ascending); n != len(t.cols) {
		// Name the first position that has no counterpart on the other side.
		ierr := &errdefs.IndexError{What: "sort flag", Index: n, Len: n}
		if n > len(t.cols) {
			ierr = &errdefs.IndexError{What: "column", Index: len(t.cols), Len: len(t.cols)}
		}
		return nil, fmt.Errorf("%d sort flags for %d columns: %w", n, len(t.cols), ierr)
	}

	orders := make([]compute.Order, len(ascending))
	nullOrders := make([]compute.NullOrder, len(nullsBefore))
	for i := range ascending {
		if !ascending[i] {
			orders[i] = compute.Descending
		}
		if nullsBefore[i] {
			nullOrders[i] = compute.NullsBefore
		}
	}

	r, err := t.o.engine.SortedOrder(ctx, t.View(), orders, nullOrders)
	t.keepAlive()
	if err != nil {
		return nil, err
	}
	c, err := column.New(r.Type, r.Length, r.Data)
	if err != nil {
		_ = r.Release()
		return nil, err
	}
	return c, nil
}

// Gather returns a new table holding the rows selected by gatherMap.
func (t *Table) Gather(ctx context.Context, gatherMap *column.Column) (_ *Table, err error) {
	start := time.Now()
	defer func() { t.observe("gather", start, t.rows, err) }()

	if gatherMap == nil {
		return nil, errdefs.Argumentf("gather map is nil")
	}
	results, err := t.o.engine.Gather(ctx, t.View(), gatherMap.View())
	t.keepAlive()
	gatherMap.KeepAlive()
	if err != nil {
		return nil, err
	}
	return t.derive(results)
}

// Scatter writes row i of source to row scatterMap[i] of t, in place, and
// updates the null counts of t's columns. On failure, the columns already
// written keep counts matching their masks.
func (t *Table) Scatter(ctx context.Context, source *Table, scatterMap *column.Column) (err error) {
	start := time.Now()
	defer func() { t.observe("scatter", start, t.rows, err) }()

	if source == nil {
		return errdefs.Argumentf("scatter source is nil")
	}
	if scatterMap == nil {
		return errdefs.Argumentf("scatter map is nil")
	}
	counts, err := t.o.engine.Scatter(ctx, source.View(), scatterMap.View(), t.MutableView())
	t.keepAlive()
	source.keepAlive()
	scatterMap.KeepAlive()
	for i, n := range counts {
		if serr := t.cols[i].SetNullCount(n); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}

// DropNulls returns a new table without the rows where fewer than
// threshold of the key columns are valid. With no keys, every column is a
// key; a negative threshold requires every key to be valid.
func (t *Table) DropNulls(ctx context.Context, keys []int, threshold int) (_ *Table, err error) {
	start := time.Now()
	defer func() { t.observe("drop_nulls", start, t.rows, err) }()

	if len(keys) == 0 {
		keys = make([]int, len(t.cols))
		for i := range keys {
			keys[i] = i
		}
	}
	if threshold < 0 {
		threshold = len(keys)
	}
	results, err := t.o.engine.DropNulls(ctx, t.View(), keys, threshold)
	t.keepAlive()
	if err != nil {
		return nil, err
	}
	return t.derive(results)
}
