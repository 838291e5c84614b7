// Package resource implements external-memory accounting for device buffers.
//
// Device memory is invisible to the Go heap: a program can hold gigabytes of
// it through a handful of small Go objects, so the garbage collector never
// feels any pressure to collect the objects whose cleanups would free it. The
// Controller closes that gap. Every successful device allocation and release
// adjusts its counter, and when usage grows by more than the configured
// threshold since the last collection it asks the collector to run.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                         Controller                          │
//	├──────────────────┬──────────────────┬───────────────────────┤
//	│  Memory Limit    │  GC Pressure     │  Transfer Limiter     │
//	│  (fail-fast sem) │  (threshold hook)│  (token bucket)       │
//	├──────────────────┼──────────────────┼───────────────────────┤
//	│  AcquireMemory   │  Collections     │  AcquireTransfer      │
//	│  ReleaseMemory   │                  │  TryAcquireTransfer   │
//	│  MemoryUsage     │                  │                       │
//	└──────────────────┴──────────────────┴───────────────────────┘
//
// # Memory Accounting
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded if a hard
// limit is configured and would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB of device memory
//	})
//
//	if err := rc.AcquireMemory(n); err != nil {
//	    // ErrMemoryLimitExceeded - caller decides retry/backoff
//	}
//	defer rc.ReleaseMemory(n)
//
// # Process-wide Accounting
//
// Global returns the process-wide controller used by the default device.
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
