package compute

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/view"
)

// Gather returns the rows of tv selected by gatherMap, in map order.
// The map must be a non-null integer column; any index outside
// [0, tv.NumRows()) fails with an *errdefs.IndexError.
func (e *Engine) Gather(ctx context.Context, tv view.Table, gatherMap view.Column) ([]*Result, error) {
	rows, err := indexMap(ctx, gatherMap, tv.NumRows())
	if err != nil {
		return nil, err
	}
	return e.gatherRows(ctx, tv, rows)
}

// DropNulls keeps the rows of tv where at least threshold of the key
// columns are valid. Kept rows preserve their relative order.
func (e *Engine) DropNulls(ctx context.Context, tv view.Table, keys []int, threshold int) ([]*Result, error) {
	keyCols := make([]view.Column, len(keys))
	for i, k := range keys {
		c, err := tv.Column(k)
		if err != nil {
			return nil, err
		}
		keyCols[i] = c
	}
	keyView, err := view.NewTable(keyCols...)
	if err != nil {
		return nil, err
	}
	hosts, err := e.downloadAll(ctx, keyView)
	if err != nil {
		return nil, err
	}

	kept := roaring.New()
	for row := range tv.NumRows() {
		valid := 0
		for _, h := range hosts {
			if h.isValid(row) {
				valid++
			}
		}
		if valid >= threshold {
			kept.Add(uint32(row))
		}
	}
	e.logger.Debug("drop nulls",
		"rows", tv.NumRows(),
		"kept", kept.GetCardinality(),
		"threshold", threshold,
	)

	rows := make([]int, 0, kept.GetCardinality())
	it := kept.Iterator()
	for it.HasNext() {
		rows = append(rows, int(it.Next()))
	}
	return e.gatherRows(ctx, tv, rows)
}

func (e *Engine) gatherRows(ctx context.Context, tv view.Table, rows []int) ([]*Result, error) {
	if err := tv.Validate(); err != nil {
		return nil, err
	}
	cols := tv.Columns()
	out, err := e.perColumn(ctx, len(cols), func(ctx context.Context, i int) (*Result, error) {
		src, err := download(ctx, cols[i])
		if err != nil {
			return nil, err
		}
		dst := newHostColumn(src.typ, len(rows), src.valid != nil)
		for j, row := range rows {
			dst.copyRow(j, src, row)
		}
		return upload(ctx, e.dev, dst)
	})
	tv.KeepAlive()
	return out, err
}

// indexMap downloads an integer index column and checks every entry
// against [0, bound).
func indexMap(ctx context.Context, m view.Column, bound int) ([]int, error) {
	if !m.Type.IsInteger() {
		return nil, errdefs.Argumentf("index map must be an integer column, got %s", m.Type)
	}
	if m.HasNulls() {
		return nil, errdefs.Argumentf("index map must not contain nulls")
	}
	h, err := download(ctx, m)
	if err != nil {
		return nil, err
	}
	rows := make([]int, h.length)
	for i := range rows {
		idx := h.index(i)
		if idx < 0 || idx >= int64(bound) {
			return nil, &errdefs.IndexError{What: "row", Index: int(idx), Len: bound}
		}
		rows[i] = int(idx)
	}
	return rows, nil
}
