package compute

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/view"
)

// Scatter writes row i of source to row scatterMap[i] of target, in place.
// It returns the new null count of each target column; callers must record
// them on the owning columns.
//
// Every column is staged on the host before the first write-back, so a
// failed download leaves target untouched. If a write-back fails, the
// returned counts cover the columns already written, in order, and must
// still be recorded.
func (e *Engine) Scatter(ctx context.Context, source view.Table, scatterMap view.Column, target view.MutableTable) ([]int, error) {
	if source.NumColumns() != target.NumColumns() {
		return nil, errdefs.Invariantf("scatter of %d columns into %d", source.NumColumns(), target.NumColumns())
	}
	if scatterMap.Length != source.NumRows() {
		return nil, errdefs.Invariantf("scatter map of %d rows for %d source rows", scatterMap.Length, source.NumRows())
	}
	srcCols, dstCols := source.Columns(), target.Columns()
	for i := range srcCols {
		if srcCols[i].Type != dstCols[i].Type {
			return nil, errdefs.Argumentf("column %d: cannot scatter %s into %s", i, srcCols[i].Type, dstCols[i].Type)
		}
		if srcCols[i].HasNulls() && !dstCols[i].Nullable() {
			return nil, errdefs.Argumentf("column %d: target has no null mask", i)
		}
	}
	if err := target.Validate(); err != nil {
		return nil, err
	}

	rows, err := indexMap(ctx, scatterMap, target.NumRows())
	if err != nil {
		return nil, err
	}

	staged := make([]*hostColumn, len(dstCols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range dstCols {
		g.Go(func() error {
			src, err := download(gctx, srcCols[i])
			if err != nil {
				return err
			}
			dst, err := download(gctx, dstCols[i].ReadOnly())
			if err != nil {
				return err
			}
			for j, row := range rows {
				dst.copyRow(row, src, j)
			}
			staged[i] = dst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make([]int, 0, len(dstCols))
	for i, dst := range staged {
		if err := writeBack(ctx, dstCols[i], dst); err != nil {
			return counts, err
		}
		counts = append(counts, dst.nullCount())
	}
	source.KeepAlive()
	target.KeepAlive()
	if err := e.dev.Synchronize(); err != nil {
		return counts, err
	}
	return counts, nil
}
