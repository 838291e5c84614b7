package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/resource"
	"github.com/mzegar/devframe/metrics"
	"github.com/mzegar/devframe/testutil"
)

type fixture struct {
	rc     *resource.Controller
	dev    *device.Device
	engine *compute.Engine
	obs    *metrics.BasicObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{obs: &metrics.BasicObserver{}}
	f.dev, f.rc = testutil.NewDevice(device.WithMetricsObserver(f.obs))
	f.engine = compute.New(f.dev)
	return f
}

func (f *fixture) opts() []Option {
	return []Option{WithEngine(f.engine)}
}

func mustColumn[T dtype.Native](t *testing.T, f *fixture, values []T, valid []bool) *column.Column {
	t.Helper()
	c, err := column.FromSlice(t.Context(), f.dev, values, valid)
	require.NoError(t, err)
	return c
}

func ints(t *testing.T, f *fixture, n int) *column.Column {
	t.Helper()
	values := make([]int32, n)
	for i := range values {
		values[i] = int32(i)
	}
	return mustColumn(t, f, values, nil)
}

func TestNew_EqualLengths(t *testing.T) {
	f := newFixture(t)
	tbl, err := New(FromColumns(ints(t, f, 3), ints(t, f, 3), ints(t, f, 3)), f.opts()...)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.NumColumns())
	assert.Equal(t, 3, tbl.NumRows())
}

func TestNew_LengthMismatch(t *testing.T) {
	f := newFixture(t)
	_, err := New(FromColumns(ints(t, f, 3), ints(t, f, 4), ints(t, f, 3)), f.opts()...)
	require.ErrorIs(t, err, errdefs.ErrInvariant)
	assert.Contains(t, err.Error(), "all columns must be of same length")

	var lm *errdefs.LengthMismatchError
	require.ErrorAs(t, err, &lm)
	assert.Equal(t, 1, lm.Column)
	assert.Equal(t, 3, lm.Expected)
	assert.Equal(t, 4, lm.Actual)
}

func TestNew_InvalidSource(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, errdefs.ErrArgument)

	f := newFixture(t)
	_, err = New(FromColumns(ints(t, f, 1), nil), f.opts()...)
	assert.ErrorIs(t, err, errdefs.ErrArgument)
}

func TestColumnAt(t *testing.T) {
	f := newFixture(t)
	a, b := ints(t, f, 2), ints(t, f, 2)
	tbl, err := New(FromColumns(a, b), f.opts()...)
	require.NoError(t, err)

	got, err := tbl.Column(1)
	require.NoError(t, err)
	assert.Same(t, b, got)
	got, err = tbl.Column(0)
	require.NoError(t, err)
	assert.Same(t, a, got)

	for _, i := range []int{-1, 2, 100} {
		_, err := tbl.Column(i)
		require.ErrorIs(t, err, errdefs.ErrIndex)
		var ie *errdefs.IndexError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, i, ie.Index)
		assert.Equal(t, 2, ie.Len)
	}
}

func TestEmptyTable(t *testing.T) {
	f := newFixture(t)
	tbl, err := New(FromColumns(), f.opts()...)
	require.NoError(t, err)
	assert.Zero(t, tbl.NumColumns())
	assert.Zero(t, tbl.NumRows())

	tv := tbl.View()
	assert.Zero(t, tv.NumColumns())
	assert.Zero(t, tv.NumRows())
	require.NoError(t, tv.Validate())

	perm, err := tbl.OrderBy(t.Context(), nil, nil)
	require.NoError(t, err)
	assert.Zero(t, perm.Size())

	res, err := f.engine.SortedOrder(t.Context(), tv, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Length)

	empty, err := New(FromResults(), f.opts()...)
	require.NoError(t, err)
	assert.Zero(t, empty.NumRows())
}

func TestViews_Rebuilt(t *testing.T) {
	f := newFixture(t)
	a := mustColumn(t, f, []int64{1, 2}, []bool{true, true})
	tbl, err := New(FromColumns(a), f.opts()...)
	require.NoError(t, err)

	v1 := tbl.View()
	require.NoError(t, a.SetNullCount(0))
	c, err := v1.Column(0)
	require.NoError(t, err)
	assert.Equal(t, a.Data().Ptr(), c.Data)
	assert.Equal(t, a.Mask().Ptr(), c.Mask)

	mv := tbl.MutableView()
	assert.Equal(t, 1, mv.NumColumns())
	assert.Equal(t, 2, mv.NumRows())
}

func TestFromResults_RoundTripMetadata(t *testing.T) {
	f := newFixture(t)
	a := mustColumn(t, f, []int32{4, 5, 6}, []bool{true, false, true})
	b := mustColumn(t, f, []float32{1, 2, 3}, nil)
	src, err := New(FromColumns(a, b), f.opts()...)
	require.NoError(t, err)

	results, err := f.engine.Gather(t.Context(), src.View(), mustColumn(t, f, []int32{2, 1, 0}, nil).View())
	require.NoError(t, err)

	tbl, err := New(FromResults(results...), f.opts()...)
	require.NoError(t, err)
	tv := tbl.View()
	require.Equal(t, len(results), tv.NumColumns())
	for i, r := range results {
		c, err := tv.Column(i)
		require.NoError(t, err)
		assert.Equal(t, r.Type, c.Type)
		assert.Equal(t, r.Length, c.Length)
		assert.Equal(t, r.NullCount, c.NullCount)
		assert.Equal(t, r.Data.Ptr(), c.Data)
	}
}

func TestFromResults_FailureReleasesBuffers(t *testing.T) {
	f := newFixture(t)
	before := f.rc.MemoryUsage()

	short, err := f.dev.Allocate(8)
	require.NoError(t, err)
	long, err := f.dev.Allocate(12)
	require.NoError(t, err)
	results := []*compute.Result{
		{Type: dtype.Int32, Length: 2, Data: short},
		{Type: dtype.Int32, Length: 3, Data: long},
	}

	_, err = New(FromResults(results...), f.opts()...)
	require.ErrorIs(t, err, errdefs.ErrInvariant)
	assert.True(t, short.Released())
	assert.True(t, long.Released())
	assert.Equal(t, before, f.rc.MemoryUsage())

	bad, err := f.dev.Allocate(4)
	require.NoError(t, err)
	_, err = New(FromResults(&compute.Result{Type: dtype.Int64, Length: 1, Data: bad}), f.opts()...)
	require.ErrorIs(t, err, errdefs.ErrInvariant)
	assert.True(t, bad.Released())
}

func TestSelectConcat(t *testing.T) {
	f := newFixture(t)
	a, b, c := ints(t, f, 2), ints(t, f, 2), ints(t, f, 2)
	tbl, err := New(FromColumns(a, b, c), f.opts()...)
	require.NoError(t, err)

	sel, err := tbl.Select(2, 0)
	require.NoError(t, err)
	got, _ := sel.Column(0)
	assert.Same(t, c, got)
	got, _ = sel.Column(1)
	assert.Same(t, a, got)

	_, err = tbl.Select(3)
	assert.ErrorIs(t, err, errdefs.ErrIndex)

	joined, err := Concat(sel, tbl)
	require.NoError(t, err)
	assert.Equal(t, 5, joined.NumColumns())
	assert.Equal(t, 2, joined.NumRows())

	other, err := New(FromColumns(ints(t, f, 3)), f.opts()...)
	require.NoError(t, err)
	_, err = Concat(tbl, other)
	assert.ErrorIs(t, err, errdefs.ErrInvariant)

	none, err := Concat()
	require.NoError(t, err)
	assert.Zero(t, none.NumColumns())
}

func TestRelease(t *testing.T) {
	f := newFixture(t)
	tbl, err := New(FromColumns(ints(t, f, 4), mustColumn(t, f, []int8{1, 2, 3, 4}, []bool{true, true, false, true})), f.opts()...)
	require.NoError(t, err)
	assert.Positive(t, f.rc.MemoryUsage())

	require.NoError(t, tbl.Release())
	assert.Zero(t, f.rc.MemoryUsage())
	assert.ErrorIs(t, tbl.View().Validate(), errdefs.ErrReleased)

	_, err = tbl.OrderBy(t.Context(), []bool{true, true}, []bool{true, true})
	assert.ErrorIs(t, err, errdefs.ErrReleased)
}
