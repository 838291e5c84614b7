package resource

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	// Test with limit
	c := NewController(Config{MemoryLimitBytes: 100, GCThresholdBytes: -1})

	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(50), c.MemoryUsage())

	require.NoError(t, c.AcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Acquire 20 (should fail - limit exceeded)
	err := c.AcquireMemory(20)
	assert.ErrorIs(t, err, ErrMemoryLimitExceeded)
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())

	// Now Acquire 20 should succeed
	require.NoError(t, c.AcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
	assert.Equal(t, int64(90), c.PeakMemoryUsage())
	assert.Equal(t, int64(100), c.MemoryLimit())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{GCThresholdBytes: -1})

	require.NoError(t, c.AcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())

	// Non-positive amounts are ignored.
	require.NoError(t, c.AcquireMemory(0))
	c.ReleaseMemory(-3)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_CollectOnPressure(t *testing.T) {
	var calls atomic.Int64
	c := NewController(Config{
		GCThresholdBytes: 100,
		Collect:          func() { calls.Add(1) },
	})

	require.NoError(t, c.AcquireMemory(60))
	assert.Zero(t, calls.Load())

	require.NoError(t, c.AcquireMemory(60)) // 120 since baseline 0
	assert.Equal(t, int64(1), calls.Load())
	assert.Equal(t, int64(1), c.Collections())

	// Baseline moved to 120; 50 more is below threshold.
	require.NoError(t, c.AcquireMemory(50))
	assert.Equal(t, int64(1), calls.Load())

	// Dropping lowers the baseline so regrowth is measured from the low point.
	c.ReleaseMemory(170)
	require.NoError(t, c.AcquireMemory(100))
	assert.Equal(t, int64(2), calls.Load())
}

func TestController_CollectDisabled(t *testing.T) {
	var calls atomic.Int64
	c := NewController(Config{GCThresholdBytes: -1, Collect: func() { calls.Add(1) }})
	require.NoError(t, c.AcquireMemory(1<<40))
	assert.Zero(t, calls.Load())
}

func TestController_NilChecks(t *testing.T) {
	var c *Controller
	assert.NoError(t, c.AcquireMemory(10))
	c.ReleaseMemory(10) // Should not panic
	assert.Zero(t, c.MemoryUsage())
	assert.Zero(t, c.PeakMemoryUsage())
	assert.Zero(t, c.Collections())
	assert.NoError(t, c.AcquireTransfer(context.Background(), 10))
	assert.True(t, c.TryAcquireTransfer(10))
}

func TestController_Transfer(t *testing.T) {
	c := NewController(Config{TransferLimitBytesPerSec: 1000})

	assert.True(t, c.TryAcquireTransfer(1000))
	assert.False(t, c.TryAcquireTransfer(1000))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := c.AcquireTransfer(ctx, 5000)
	assert.Error(t, err)
}

func TestController_TransferUnlimited(t *testing.T) {
	c := NewController(Config{})
	require.NoError(t, c.AcquireTransfer(t.Context(), 1<<30))
}

func TestGlobal(t *testing.T) {
	assert.Same(t, Global(), Global())
}
