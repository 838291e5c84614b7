package devframe

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/metrics"
	"github.com/mzegar/devframe/table"
)

func TestSession_EndToEnd(t *testing.T) {
	ctx := t.Context()
	obs := &metrics.BasicObserver{}
	s := New(WithMetricsObserver(obs), WithGCThreshold(-1), WithParallelism(2))

	keys, err := FromSlice(ctx, s, []int64{3, 1, 2, 0}, []bool{true, true, true, false})
	require.NoError(t, err)
	vals, err := FromSlice(ctx, s, []float64{0.3, 0.1, 0.2, 0}, nil)
	require.NoError(t, err)

	tbl, err := s.NewTable(table.FromColumns(keys, vals))
	require.NoError(t, err)
	assert.Same(t, s.Engine(), tbl.Engine())

	perm, err := tbl.OrderBy(ctx, []bool{true, true}, []bool{true, true})
	require.NoError(t, err)
	got, _, err := column.ToSlice[int32](ctx, perm)
	require.NoError(t, err)
	assert.Equal(t, []int32{3, 1, 2, 0}, got)

	sorted, err := tbl.Gather(ctx, perm)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, sorted.WriteCSV(ctx, &buf, compute.CSVOptions{Header: true, Names: []string{"k", "v"}}))
	assert.Equal(t, "k,v\n,0\n1,0.1\n2,0.2\n3,0.3\n", buf.String())

	back, names, err := s.ReadCSV(ctx, &buf, []dtype.TypeID{dtype.Int64, dtype.Float64}, compute.CSVOptions{Header: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "v"}, names)
	assert.Equal(t, 4, back.NumRows())

	stats := obs.Stats()
	assert.Positive(t, stats.AllocCount)
	assert.Equal(t, stats.AllocBytes-stats.ReleaseBytes, s.Stats().MemoryUsage)
	assert.Positive(t, stats.TableOpCount)

	for _, tb := range []*table.Table{tbl, sorted, back} {
		require.NoError(t, tb.Release())
	}
	require.NoError(t, perm.Release())
	assert.Zero(t, s.Stats().MemoryUsage)
	assert.Positive(t, s.Stats().PeakMemoryUsage)
}

func TestSession_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	s := New(WithMemoryLimit(1024), WithGCThreshold(-1))

	b, err := s.Allocate(ctx, 1000)
	require.NoError(t, err)
	_, err = s.Allocate(ctx, 100)
	require.ErrorIs(t, err, ErrAllocation)
	var ae *AllocationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, int64(100), ae.Bytes)

	assert.Equal(t, int64(1000), s.Stats().MemoryUsage)
	assert.Equal(t, int64(1024), s.Stats().MemoryLimit)

	require.NoError(t, s.Release(ctx, b))
	assert.Zero(t, s.Stats().MemoryUsage)
	require.NoError(t, s.Synchronize())
}

func TestSession_IndependentAccounting(t *testing.T) {
	ctx := t.Context()
	a := New(WithGCThreshold(-1))
	b := New(WithGCThreshold(-1))

	buf, err := a.Allocate(ctx, 256)
	require.NoError(t, err)
	assert.Equal(t, int64(256), a.Stats().MemoryUsage)
	assert.Zero(t, b.Stats().MemoryUsage)
	require.NoError(t, buf.Release())
}

func TestSession_ArrowRoundTrip(t *testing.T) {
	ctx := t.Context()
	s := New(WithGCThreshold(-1))

	ts, err := FromSliceAs(ctx, s, dtype.TimestampMicros, []int64{1, 2}, []bool{true, false})
	require.NoError(t, err)
	tbl, err := s.NewTable(table.FromColumns(ts))
	require.NoError(t, err)

	rec, err := tbl.ToArrow(ctx, []string{"ts"})
	require.NoError(t, err)
	defer rec.Release()
	fromRec, names, err := s.FromArrow(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts"}, names)
	c, err := fromRec.Column(0)
	require.NoError(t, err)
	assert.Equal(t, dtype.TimestampMicros, c.Type())
	assert.Equal(t, 1, c.NullCount())

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteArrow(ctx, &buf, []string{"ts"}))
	read, _, err := s.ReadArrow(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, read.NumRows())
}

func TestSession_ErrorsReexported(t *testing.T) {
	ctx := t.Context()
	s := New()
	a, err := FromSlice(ctx, s, []int32{1, 2, 3}, nil)
	require.NoError(t, err)
	b, err := FromSlice(ctx, s, []int32{1, 2}, nil)
	require.NoError(t, err)

	_, err = s.NewTable(table.FromColumns(a, b))
	require.ErrorIs(t, err, ErrInvariant)
	var lm *LengthMismatchError
	assert.ErrorAs(t, err, &lm)

	tbl, err := s.NewTable(table.FromColumns(a))
	require.NoError(t, err)
	_, err = tbl.Column(1)
	var ie *IndexError
	assert.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, ErrIndex)
}
