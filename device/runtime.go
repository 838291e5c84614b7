package device

// Ptr is an opaque device address. The zero Ptr is the null address.
type Ptr uintptr

// Add returns p offset by n bytes.
func (p Ptr) Add(n int64) Ptr {
	return p + Ptr(n)
}

// IsNil reports whether p is the null address.
func (p Ptr) IsNil() bool {
	return p == 0
}

// Copy kinds reported to metrics observers.
const (
	CopyHostToDevice   = "htod"
	CopyDeviceToHost   = "dtoh"
	CopyDeviceToDevice = "dtod"
)

// Runtime is implemented by device runtimes. It provides raw allocation and
// copy primitives; Device layers ownership and accounting on top.
//
// Any non-nil error is fatal for the operation that received it.
type Runtime interface {
	// Name identifies the runtime in logs.
	Name() string

	// Alloc reserves n > 0 bytes of device memory.
	Alloc(n int64) (Ptr, error)

	// Free releases memory previously returned by Alloc.
	Free(p Ptr) error

	// CopyToDevice copies len(src) bytes from host memory to dst.
	CopyToDevice(dst Ptr, src []byte) error

	// CopyToHost copies len(dst) bytes from src to host memory.
	CopyToHost(dst []byte, src Ptr) error

	// CopyDevice copies n bytes between device addresses. Regions may overlap.
	CopyDevice(dst, src Ptr, n int64) error

	// Synchronize blocks until all previously issued work has completed.
	Synchronize() error
}
