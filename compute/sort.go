package compute

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/view"
)

// Order is the sort direction of one key column.
type Order int8

const (
	Ascending Order = iota
	Descending
)

// NullOrder places nulls relative to valid values of one key column.
//
// NullsBefore treats a null as smaller than every value, so nulls come
// first in ascending order and last in descending order. NullsAfter is the
// reverse.
type NullOrder int8

const (
	NullsAfter NullOrder = iota
	NullsBefore
)

// SortedOrder returns the permutation that stably sorts the rows of tv by
// every column in turn. Empty orders default to Ascending and empty
// nullOrders to NullsBefore. The result is a SizeType column.
func (e *Engine) SortedOrder(ctx context.Context, tv view.Table, orders []Order, nullOrders []NullOrder) (*Result, error) {
	n := tv.NumColumns()
	if len(orders) != 0 && len(orders) != n {
		return nil, errdefs.Invariantf("%d column orders for %d columns", len(orders), n)
	}
	if len(nullOrders) != 0 && len(nullOrders) != n {
		return nil, errdefs.Invariantf("%d null orders for %d columns", len(nullOrders), n)
	}

	cols, err := e.downloadAll(ctx, tv)
	if err != nil {
		return nil, err
	}

	keys := make([]func(a, b int) int, n)
	for i, h := range cols {
		order, nullOrder := Ascending, NullsBefore
		if len(orders) != 0 {
			order = orders[i]
		}
		if len(nullOrders) != 0 {
			nullOrder = nullOrders[i]
		}
		keys[i] = keyComparator(h, order, nullOrder)
	}

	rows := tv.NumRows()
	perm := make([]int32, rows)
	for i := range perm {
		perm[i] = int32(i)
	}
	slices.SortStableFunc(perm, func(a, b int32) int {
		for _, key := range keys {
			if c := key(int(a), int(b)); c != 0 {
				return c
			}
		}
		return 0
	})

	out := newHostColumn(dtype.SizeType, rows, false)
	copy(out.data, dtype.Bytes(perm))
	r, err := upload(ctx, e.dev, out)
	if err != nil {
		return nil, err
	}
	if err := e.dev.Synchronize(); err != nil {
		_ = r.Release()
		return nil, err
	}
	return r, nil
}

func keyComparator(h *hostColumn, order Order, nullOrder NullOrder) func(a, b int) int {
	values := valueComparator(h)
	return func(a, b int) int {
		va, vb := h.isValid(a), h.isValid(b)
		var c int
		switch {
		case va && vb:
			c = values(a, b)
		case !va && !vb:
			return 0
		case !va:
			c = 1
			if nullOrder == NullsBefore {
				c = -1
			}
		default:
			c = -1
			if nullOrder == NullsBefore {
				c = 1
			}
		}
		if order == Descending {
			c = -c
		}
		return c
	}
}

func valueComparator(h *hostColumn) func(a, b int) int {
	switch kindOf(h.typ) {
	case kindUnsigned:
		return func(a, b int) int { return cmp.Compare(h.unsigned(a), h.unsigned(b)) }
	case kindFloat:
		return func(a, b int) int { return compareFloat(h.float(a), h.float(b)) }
	case kindBool:
		return func(a, b int) int { return compareBool(h.unsigned(a) != 0, h.unsigned(b) != 0) }
	}
	return func(a, b int) int { return cmp.Compare(h.signed(a), h.signed(b)) }
}

// compareFloat orders NaN after every other value and equal to itself.
func compareFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	}
	return cmp.Compare(a, b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}
