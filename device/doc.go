// Package device manages device memory buffers whose lifetime is governed by
// the Go garbage collector.
//
// # Ownership
//
// Every Buffer exclusively owns one device allocation. The allocation is
// released exactly once: either explicitly through Release, or by a cleanup
// registered with runtime.AddCleanup when the Buffer becomes unreachable.
// Release is idempotent and cancels the cleanup, so there is never a second
// code path freeing the same region.
//
// # External Memory Accounting
//
// Device memory is invisible to the Go heap. Each successful allocation and
// each successful free adjusts the Device's resource controller by exactly the
// buffer size, which lets the controller trigger a collection when device
// usage grows. Failed allocations are never counted, and a free the runtime
// rejects is never subtracted.
//
// # Runtimes
//
// Device talks to hardware through the Runtime interface. HostRuntime is a
// reference runtime backed by anonymous off-heap mappings; it behaves like a
// device whose copies complete synchronously.
//
// # Usage
//
//	dev := device.New(device.WithMemoryLimit(1 << 30))
//	buf, err := dev.Allocate(4096)
//	if err != nil { ... }
//	defer buf.Release()
//
//	part, err := buf.Slice(-1024, math.MaxInt64) // last 1KiB, copied
package device
