package device

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/mzegar/devframe/errdefs"
)

// allocation is the state a cleanup needs to free a buffer. It must not
// reference the Buffer, or the Buffer would never become unreachable.
type allocation struct {
	dev      *Device
	ptr      Ptr
	size     int64
	released atomic.Bool
}

// release frees the region at most once. Accounting follows the runtime's
// actual outcome: a rejected free is not subtracted and is never retried.
func (a *allocation) release(fromCollector bool) error {
	if !a.released.CompareAndSwap(false, true) {
		return nil
	}
	if a.ptr == 0 {
		return nil
	}

	err := a.dev.rt.Free(a.ptr)
	a.dev.metrics.OnRelease(a.size, fromCollector, err)
	if err != nil {
		a.dev.logger.Error("device free failed",
			"runtime", a.dev.rt.Name(),
			"bytes", a.size,
			"collector", fromCollector,
			"error", err,
		)
		return fmt.Errorf("device: free of %d bytes: %w", a.size, err)
	}
	a.dev.rc.ReleaseMemory(a.size)
	a.dev.logger.Debug("device buffer released",
		"bytes", a.size,
		"collector", fromCollector,
	)
	return nil
}

// finalize runs on the runtime's cleanup goroutine. Errors are logged by
// release and must not escape.
func finalize(a *allocation) {
	_ = a.release(true)
}

// Buffer is a fixed-size region of device memory with exclusive ownership.
//
// A Buffer is not safe for concurrent mutation.
type Buffer struct {
	alloc   *allocation
	cleanup runtime.Cleanup
}

// Allocate reserves n bytes of device memory.
//
// Zero-length requests succeed with a null address and no accounting.
// Negative lengths fail with errdefs.ErrArgument; refusals by the memory
// limit or the runtime fail with an *errdefs.AllocationError and leave the
// accounting unchanged.
func (d *Device) Allocate(n int64) (*Buffer, error) {
	if n < 0 {
		return nil, errdefs.Argumentf("negative byte length %d", n)
	}
	if n == 0 {
		b := &Buffer{alloc: &allocation{dev: d}}
		return b, nil
	}

	if err := d.rc.AcquireMemory(n); err != nil {
		d.metrics.OnAllocate(n, err)
		return nil, errdefs.NewAllocationError(n, err)
	}
	p, err := d.rt.Alloc(n)
	if err != nil {
		d.rc.ReleaseMemory(n)
		d.metrics.OnAllocate(n, err)
		d.logger.Warn("device allocation failed",
			"runtime", d.rt.Name(),
			"bytes", n,
			"error", err,
		)
		return nil, errdefs.NewAllocationError(n, err)
	}
	d.metrics.OnAllocate(n, nil)

	a := &allocation{dev: d, ptr: p, size: n}
	b := &Buffer{alloc: a}
	b.cleanup = runtime.AddCleanup(b, finalize, a)
	return b, nil
}

// FromHost allocates a buffer of len(data) bytes and uploads data into it.
func (d *Device) FromHost(ctx context.Context, data []byte) (*Buffer, error) {
	b, err := d.Allocate(int64(len(data)))
	if err != nil {
		return nil, err
	}
	if err := b.Upload(ctx, data); err != nil {
		_ = b.Release()
		return nil, err
	}
	return b, nil
}

// Release frees the device region. It is idempotent: calls after the first,
// including the collector's, are no-ops. A free rejected by the runtime is
// returned, and the buffer is still considered released.
func (b *Buffer) Release() error {
	if b == nil {
		return nil
	}
	if b.alloc.ptr != 0 {
		b.cleanup.Stop()
	}
	return b.alloc.release(false)
}

// Released reports whether the buffer has been released.
func (b *Buffer) Released() bool {
	return b.alloc.released.Load()
}

// Size returns the byte length, or 0 once released.
func (b *Buffer) Size() int64 {
	if b.alloc.released.Load() {
		return 0
	}
	return b.alloc.size
}

// Ptr returns the raw device address for interop with the compute library.
// The address is valid only while the Buffer is reachable and not released;
// callers must keep the Buffer alive (runtime.KeepAlive) for the duration of
// any use of the address.
func (b *Buffer) Ptr() Ptr {
	if b.alloc.released.Load() {
		return 0
	}
	return b.alloc.ptr
}

// Device returns the device the buffer was allocated on.
func (b *Buffer) Device() *Device {
	return b.alloc.dev
}

// Slice returns a new, independently-owned buffer holding a copy of the
// bytes [begin, end). Indices follow ClampSlice.
func (b *Buffer) Slice(begin, end int64) (*Buffer, error) {
	if b.Released() {
		return nil, errdefs.ErrReleased
	}
	lhs, rhs := ClampSlice(b.alloc.size, begin, end)
	out, err := b.alloc.dev.Allocate(rhs - lhs)
	if err != nil {
		return nil, err
	}
	if rhs > lhs {
		if err := b.alloc.dev.CopyDevice(out.Ptr(), b.alloc.ptr.Add(lhs), rhs-lhs); err != nil {
			_ = out.Release()
			return nil, err
		}
	}
	runtime.KeepAlive(b)
	return out, nil
}

// Clone returns an independently-owned copy of the whole buffer.
func (b *Buffer) Clone() (*Buffer, error) {
	return b.Slice(0, b.Size())
}

// Upload copies src to the start of the buffer.
func (b *Buffer) Upload(ctx context.Context, src []byte) error {
	return b.UploadAt(ctx, 0, src)
}

// UploadAt copies src into the buffer starting at byte offset off.
func (b *Buffer) UploadAt(ctx context.Context, off int64, src []byte) error {
	if b.Released() {
		return errdefs.ErrReleased
	}
	if off < 0 || off+int64(len(src)) > b.alloc.size {
		return errdefs.Argumentf("upload of %d bytes at %d exceeds buffer of %d bytes", len(src), off, b.alloc.size)
	}
	err := b.alloc.dev.CopyToDevice(ctx, b.alloc.ptr.Add(off), src)
	runtime.KeepAlive(b)
	return err
}

// Download copies the first len(dst) bytes of the buffer into dst.
func (b *Buffer) Download(ctx context.Context, dst []byte) error {
	if b.Released() {
		return errdefs.ErrReleased
	}
	if int64(len(dst)) > b.alloc.size {
		return errdefs.Argumentf("download of %d bytes exceeds buffer of %d bytes", len(dst), b.alloc.size)
	}
	err := b.alloc.dev.CopyToHost(ctx, dst, b.alloc.ptr)
	runtime.KeepAlive(b)
	return err
}

// Bytes returns a host copy of the whole buffer.
func (b *Buffer) Bytes(ctx context.Context) ([]byte, error) {
	out := make([]byte, b.Size())
	if err := b.Download(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}
