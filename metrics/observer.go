// Package metrics defines the observer interface through which devframe
// reports device memory and table operation events.
//
// Implement Observer to integrate with a monitoring system, or use the
// bundled NoopObserver, BasicObserver (in-memory atomics) and
// PrometheusObserver.
package metrics

import "time"

// Observer receives device and table events.
// Implementations must be safe for concurrent use: release events are
// delivered from the runtime's cleanup goroutine.
type Observer interface {
	// OnAllocate is called after each device allocation attempt.
	OnAllocate(bytes int64, err error)

	// OnRelease is called after each device free attempt. fromCollector is
	// true when the release was triggered by garbage collection.
	OnRelease(bytes int64, fromCollector bool, err error)

	// OnCopy is called after each host/device transfer.
	// kind is one of "htod", "dtoh" or "dtod".
	OnCopy(kind string, bytes int64, duration time.Duration, err error)

	// OnTableOp is called after each table-level operation.
	OnTableOp(op string, rows int, duration time.Duration, err error)
}

// NoopObserver is a no-op implementation of Observer.
// Use this when metrics collection is not needed.
type NoopObserver struct{}

func (NoopObserver) OnAllocate(int64, error)                     {}
func (NoopObserver) OnRelease(int64, bool, error)                {}
func (NoopObserver) OnCopy(string, int64, time.Duration, error)  {}
func (NoopObserver) OnTableOp(string, int, time.Duration, error) {}
