package resource

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// DefaultGCThresholdBytes is the external-memory growth that triggers a
// collection when Config.GCThresholdBytes is zero.
const DefaultGCThresholdBytes = 64 << 20

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for external memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// GCThresholdBytes is the growth in external memory since the last
	// collection after which Collect is invoked.
	// If 0, DefaultGCThresholdBytes is used. Negative disables the hook.
	GCThresholdBytes int64

	// Collect is invoked when the GC threshold is crossed.
	// If nil, a background runtime.GC is started.
	Collect func()

	// TransferLimitBytesPerSec is the maximum host<->device throughput.
	// If 0, unlimited.
	TransferLimitBytesPerSec int64
}

// Controller tracks external memory and transfer bandwidth.
type Controller struct {
	cfg Config

	// Memory
	memSem   *semaphore.Weighted // nil if unlimited
	memUsed  atomic.Int64
	memPeak  atomic.Int64
	baseline atomic.Int64 // usage at the last collection
	inGC     atomic.Bool
	gcCount  atomic.Int64

	// Transfers
	limiter *rate.Limiter
	burst   int
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.GCThresholdBytes == 0 {
		cfg.GCThresholdBytes = DefaultGCThresholdBytes
	}
	if cfg.Collect == nil {
		cfg.Collect = func() { go runtime.GC() }
	}

	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.TransferLimitBytesPerSec > 0 {
		c.burst = int(cfg.TransferLimitBytesPerSec)
		c.limiter = rate.NewLimiter(rate.Limit(cfg.TransferLimitBytesPerSec), c.burst)
	}

	return c
}

var (
	globalOnce sync.Once
	global     *Controller
)

// Global returns the process-wide controller.
func Global() *Controller {
	globalOnce.Do(func() {
		global = NewController(Config{})
	})
	return global
}

// AcquireMemory accounts for bytes of newly allocated external memory.
// Returns ErrMemoryLimitExceeded if the limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil {
		return nil
	}
	if bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	used := c.memUsed.Add(bytes)
	for {
		peak := c.memPeak.Load()
		if used <= peak || c.memPeak.CompareAndSwap(peak, used) {
			break
		}
	}
	c.maybeCollect(used)
	return nil
}

// ReleaseMemory accounts for bytes of freed external memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil {
		return
	}
	if bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	used := c.memUsed.Add(-bytes)

	// Growth is measured from the lowest point since the last collection.
	for {
		base := c.baseline.Load()
		if used >= base || c.baseline.CompareAndSwap(base, used) {
			break
		}
	}
}

func (c *Controller) maybeCollect(used int64) {
	if c.cfg.GCThresholdBytes < 0 {
		return
	}
	if used-c.baseline.Load() < c.cfg.GCThresholdBytes {
		return
	}
	if !c.inGC.CompareAndSwap(false, true) {
		return
	}
	defer c.inGC.Store(false)

	c.baseline.Store(used)
	c.gcCount.Add(1)
	c.cfg.Collect()
}

// MemoryUsage returns the current external memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// PeakMemoryUsage returns the highest usage observed.
func (c *Controller) PeakMemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memPeak.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// Collections returns how many times memory pressure triggered Collect.
func (c *Controller) Collections() int64 {
	if c == nil {
		return 0
	}
	return c.gcCount.Load()
}

// AcquireTransfer waits until the transfer limit allows the specified number
// of bytes. Requests larger than one second of bandwidth are split.
func (c *Controller) AcquireTransfer(ctx context.Context, bytes int) error {
	if c == nil || c.limiter == nil {
		return nil
	}
	for bytes > 0 {
		n := min(bytes, c.burst)
		if err := c.limiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}

// TryAcquireTransfer attempts to acquire transfer tokens without blocking.
func (c *Controller) TryAcquireTransfer(bytes int) bool {
	if c == nil || c.limiter == nil {
		return true
	}
	return c.limiter.AllowN(time.Now(), bytes)
}
