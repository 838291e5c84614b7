package device

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/mzegar/devframe/internal/mmap"
)

var (
	// ErrOutOfMemory is returned by HostRuntime when its capacity is exhausted.
	ErrOutOfMemory = errors.New("device: out of memory")
	// ErrInvalidPointer is returned for addresses that do not belong to a live allocation.
	ErrInvalidPointer = errors.New("device: invalid pointer")
)

// HostRuntime is a Runtime backed by anonymous off-heap mappings.
//
// Copies complete before returning, so Synchronize only records the call.
// HostRuntime is safe for concurrent use.
type HostRuntime struct {
	mu       sync.Mutex
	allocs   map[Ptr]*mmap.Mapping
	bases    []Ptr // sorted
	capacity int64
	used     int64
	unmap    func(*mmap.Mapping) error

	allocCount atomic.Int64
	freeCount  atomic.Int64
	syncCount  atomic.Int64
}

// HostRuntimeOption configures a HostRuntime.
type HostRuntimeOption func(*HostRuntime)

// WithCapacity limits the total bytes the runtime will hand out.
// Requests beyond it fail with ErrOutOfMemory. If 0, unlimited.
func WithCapacity(bytes int64) HostRuntimeOption {
	return func(r *HostRuntime) {
		r.capacity = bytes
	}
}

// NewHostRuntime creates a new HostRuntime.
func NewHostRuntime(opts ...HostRuntimeOption) *HostRuntime {
	r := &HostRuntime{
		allocs: make(map[Ptr]*mmap.Mapping),
		unmap:  (*mmap.Mapping).Close,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name implements Runtime.
func (r *HostRuntime) Name() string { return "host" }

// Alloc implements Runtime.
func (r *HostRuntime) Alloc(n int64) (Ptr, error) {
	if n <= 0 {
		return 0, fmt.Errorf("device: invalid allocation size %d", n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.capacity > 0 && r.used+n > r.capacity {
		return 0, ErrOutOfMemory
	}

	m, err := mmap.MapAnon(int(n))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	p := Ptr(m.Addr())
	i, _ := slices.BinarySearch(r.bases, p)
	r.bases = slices.Insert(r.bases, i, p)
	r.allocs[p] = m
	r.used += n
	r.allocCount.Add(1)
	return p, nil
}

// Free implements Runtime.
func (r *HostRuntime) Free(p Ptr) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.allocs[p]
	if !ok {
		return fmt.Errorf("%w: free of %#x", ErrInvalidPointer, uintptr(p))
	}
	// The region stays tracked until it is actually unmapped.
	if err := r.unmap(m); err != nil {
		return fmt.Errorf("device: free of %#x: %w", uintptr(p), err)
	}
	i, _ := slices.BinarySearch(r.bases, p)
	r.bases = slices.Delete(r.bases, i, i+1)
	delete(r.allocs, p)
	r.used -= int64(m.Size())
	r.freeCount.Add(1)
	return nil
}

// resolve returns the host view of [p, p+n). Callers must hold r.mu.
func (r *HostRuntime) resolve(p Ptr, n int64) ([]byte, error) {
	i, found := slices.BinarySearch(r.bases, p)
	if !found {
		i--
	}
	if i < 0 {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidPointer, uintptr(p))
	}
	base := r.bases[i]
	region, err := r.allocs[base].Region(int(p-base), int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: %#x+%d: %w", ErrInvalidPointer, uintptr(p), n, err)
	}
	return region, nil
}

// CopyToDevice implements Runtime.
func (r *HostRuntime) CopyToDevice(dst Ptr, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := r.resolve(dst, int64(len(src)))
	if err != nil {
		return err
	}
	copy(d, src)
	return nil
}

// CopyToHost implements Runtime.
func (r *HostRuntime) CopyToHost(dst []byte, src Ptr) error {
	if len(dst) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.resolve(src, int64(len(dst)))
	if err != nil {
		return err
	}
	copy(dst, s)
	return nil
}

// CopyDevice implements Runtime.
func (r *HostRuntime) CopyDevice(dst, src Ptr, n int64) error {
	if n == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.resolve(src, n)
	if err != nil {
		return err
	}
	d, err := r.resolve(dst, n)
	if err != nil {
		return err
	}
	copy(d, s)
	return nil
}

// Synchronize implements Runtime.
func (r *HostRuntime) Synchronize() error {
	r.syncCount.Add(1)
	return nil
}

// HostStats is a snapshot of HostRuntime counters.
type HostStats struct {
	LiveAllocations int
	LiveBytes       int64
	Allocs          int64
	Frees           int64
	Syncs           int64
}

// Stats returns a snapshot of the runtime counters.
func (r *HostRuntime) Stats() HostStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return HostStats{
		LiveAllocations: len(r.allocs),
		LiveBytes:       r.used,
		Allocs:          r.allocCount.Load(),
		Frees:           r.freeCount.Load(),
		Syncs:           r.syncCount.Load(),
	}
}
