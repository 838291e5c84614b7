package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64s(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Int64s(100, -5, 5)

	assert.Len(t, v, 100)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int64(-5))
		assert.Less(t, x, int64(5))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Float64s(8)
	rng.Reset()
	assert.Equal(t, a, rng.Float64s(8))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestValidity(t *testing.T) {
	rng := NewRNG(1)
	assert.NotContains(t, rng.Validity(64, 0), false)
	assert.NotContains(t, rng.Validity(64, 1), true)
}

func TestPerm(t *testing.T) {
	p := NewRNG(7).Perm(10)
	seen := make(map[int32]bool)
	for _, v := range p {
		seen[v] = true
	}
	assert.Len(t, seen, 10)
}

func TestNewDevice(t *testing.T) {
	dev, rc := NewDevice()
	b, err := dev.Allocate(32)
	require.NoError(t, err)
	assert.Equal(t, int64(32), rc.MemoryUsage())
	require.NoError(t, b.Release())
	assert.Zero(t, rc.MemoryUsage())
}
