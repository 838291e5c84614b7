package device

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzegar/devframe/internal/mmap"
)

func TestHostRuntime_AllocFree(t *testing.T) {
	rt := NewHostRuntime()

	p, err := rt.Alloc(100)
	require.NoError(t, err)
	q, err := rt.Alloc(200)
	require.NoError(t, err)

	s := rt.Stats()
	assert.Equal(t, 2, s.LiveAllocations)
	assert.Equal(t, int64(300), s.LiveBytes)

	require.NoError(t, rt.Free(p))
	assert.ErrorIs(t, rt.Free(p), ErrInvalidPointer, "double free is detected")
	require.NoError(t, rt.Free(q))

	s = rt.Stats()
	assert.Zero(t, s.LiveAllocations)
	assert.Equal(t, int64(2), s.Frees)

	_, err = rt.Alloc(0)
	assert.Error(t, err)
}

func TestHostRuntime_FailedUnmapKeepsRegion(t *testing.T) {
	rt := NewHostRuntime()
	p, err := rt.Alloc(64)
	require.NoError(t, err)
	require.NoError(t, rt.CopyToDevice(p, []byte("live")))

	unmap := rt.unmap
	rt.unmap = func(*mmap.Mapping) error { return errors.New("munmap") }
	require.Error(t, rt.Free(p))

	s := rt.Stats()
	assert.Equal(t, 1, s.LiveAllocations)
	assert.Equal(t, int64(64), s.LiveBytes)
	assert.Zero(t, s.Frees)
	got := make([]byte, 4)
	require.NoError(t, rt.CopyToHost(got, p), "region is still addressable")
	assert.Equal(t, "live", string(got))

	rt.unmap = unmap
	require.NoError(t, rt.Free(p))
	s = rt.Stats()
	assert.Zero(t, s.LiveAllocations)
	assert.Zero(t, s.LiveBytes)
	assert.Equal(t, int64(1), s.Frees)
}

func TestHostRuntime_Copies(t *testing.T) {
	rt := NewHostRuntime()
	a, err := rt.Alloc(16)
	require.NoError(t, err)
	b, err := rt.Alloc(16)
	require.NoError(t, err)

	require.NoError(t, rt.CopyToDevice(a.Add(2), []byte("hello")))
	require.NoError(t, rt.CopyDevice(b, a.Add(2), 5))

	out := make([]byte, 5)
	require.NoError(t, rt.CopyToHost(out, b))
	assert.Equal(t, "hello", string(out))

	// Overlapping device copy behaves like memmove.
	require.NoError(t, rt.CopyDevice(a.Add(3), a.Add(2), 5))
	require.NoError(t, rt.CopyToHost(out, a.Add(3)))
	assert.Equal(t, "hello", string(out))

	// Out of bounds and foreign pointers.
	assert.ErrorIs(t, rt.CopyToDevice(a.Add(14), []byte("abc")), ErrInvalidPointer)
	assert.ErrorIs(t, rt.CopyToHost(out, Ptr(1)), ErrInvalidPointer)

	require.NoError(t, rt.Synchronize())
	assert.Equal(t, int64(1), rt.Stats().Syncs)
}

func TestHostRuntime_Capacity(t *testing.T) {
	rt := NewHostRuntime(WithCapacity(100))
	p, err := rt.Alloc(60)
	require.NoError(t, err)
	_, err = rt.Alloc(60)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	require.NoError(t, rt.Free(p))
	_, err = rt.Alloc(60)
	require.NoError(t, err)
}
