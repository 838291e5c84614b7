package metrics

import (
	"sync/atomic"
	"time"
)

// BasicObserver provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicObserver struct {
	AllocCount       atomic.Int64
	AllocErrors      atomic.Int64
	AllocBytes       atomic.Int64
	ReleaseCount     atomic.Int64
	ReleaseErrors    atomic.Int64
	ReleaseBytes     atomic.Int64
	CollectorRelease atomic.Int64
	CopyCount        atomic.Int64
	CopyErrors       atomic.Int64
	CopyBytes        atomic.Int64
	TableOpCount     atomic.Int64
	TableOpErrors    atomic.Int64
	TableOpNanos     atomic.Int64
}

// OnAllocate implements Observer.
func (b *BasicObserver) OnAllocate(bytes int64, err error) {
	b.AllocCount.Add(1)
	if err != nil {
		b.AllocErrors.Add(1)
		return
	}
	b.AllocBytes.Add(bytes)
}

// OnRelease implements Observer.
func (b *BasicObserver) OnRelease(bytes int64, fromCollector bool, err error) {
	b.ReleaseCount.Add(1)
	if fromCollector {
		b.CollectorRelease.Add(1)
	}
	if err != nil {
		b.ReleaseErrors.Add(1)
		return
	}
	b.ReleaseBytes.Add(bytes)
}

// OnCopy implements Observer.
func (b *BasicObserver) OnCopy(_ string, bytes int64, _ time.Duration, err error) {
	b.CopyCount.Add(1)
	if err != nil {
		b.CopyErrors.Add(1)
		return
	}
	b.CopyBytes.Add(bytes)
}

// OnTableOp implements Observer.
func (b *BasicObserver) OnTableOp(_ string, _ int, duration time.Duration, err error) {
	b.TableOpCount.Add(1)
	b.TableOpNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TableOpErrors.Add(1)
	}
}

// Stats returns a snapshot of current metrics.
func (b *BasicObserver) Stats() Stats {
	return Stats{
		AllocCount:       b.AllocCount.Load(),
		AllocErrors:      b.AllocErrors.Load(),
		AllocBytes:       b.AllocBytes.Load(),
		ReleaseCount:     b.ReleaseCount.Load(),
		ReleaseErrors:    b.ReleaseErrors.Load(),
		ReleaseBytes:     b.ReleaseBytes.Load(),
		CollectorRelease: b.CollectorRelease.Load(),
		CopyCount:        b.CopyCount.Load(),
		CopyErrors:       b.CopyErrors.Load(),
		CopyBytes:        b.CopyBytes.Load(),
		TableOpCount:     b.TableOpCount.Load(),
		TableOpErrors:    b.TableOpErrors.Load(),
		TableOpAvgNanos:  b.avgTableOpNanos(),
	}
}

func (b *BasicObserver) avgTableOpNanos() int64 {
	count := b.TableOpCount.Load()
	if count == 0 {
		return 0
	}
	return b.TableOpNanos.Load() / count
}

// Stats is a snapshot of BasicObserver state.
type Stats struct {
	AllocCount       int64
	AllocErrors      int64
	AllocBytes       int64
	ReleaseCount     int64
	ReleaseErrors    int64
	ReleaseBytes     int64
	CollectorRelease int64
	CopyCount        int64
	CopyErrors       int64
	CopyBytes        int64
	TableOpCount     int64
	TableOpErrors    int64
	TableOpAvgNanos  int64
}

// LiveBytes returns allocated minus released bytes.
func (s Stats) LiveBytes() int64 {
	return s.AllocBytes - s.ReleaseBytes
}
