package compute

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/testutil"
	"github.com/mzegar/devframe/view"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dev, _ := testutil.NewDevice()
	return New(dev, WithParallelism(2))
}

func mustColumn[T dtype.Native](t *testing.T, e *Engine, values []T, valid []bool) *column.Column {
	t.Helper()
	c, err := column.FromSlice(t.Context(), e.Device(), values, valid)
	require.NoError(t, err)
	return c
}

func mustTable(t *testing.T, cols ...*column.Column) view.Table {
	t.Helper()
	views := make([]view.Column, len(cols))
	for i, c := range cols {
		views[i] = c.View()
	}
	tv, err := view.NewTable(views...)
	require.NoError(t, err)
	return tv
}

func resultValues[T dtype.Native](t *testing.T, r *Result) ([]T, []bool) {
	t.Helper()
	var opts []column.Option
	if r.Mask != nil {
		opts = append(opts, column.WithNullMask(r.Mask, r.NullCount))
	}
	c, err := column.New(r.Type, r.Length, r.Data, opts...)
	require.NoError(t, err)
	values, valid, err := column.ToSlice[T](t.Context(), c)
	require.NoError(t, err)
	return values, valid
}

func toSlice[T dtype.Native](t *testing.T, c *column.Column) ([]T, []bool, error) {
	t.Helper()
	return column.ToSlice[T](t.Context(), c)
}

func mustColumnAs[T dtype.Native](t *testing.T, e *Engine, typ dtype.TypeID, values []T) *column.Column {
	t.Helper()
	c, err := column.FromSliceAs(t.Context(), e.Device(), typ, values, nil)
	require.NoError(t, err)
	return c
}
