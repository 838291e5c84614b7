// Package errdefs defines the error taxonomy shared by the device, column
// and table packages.
//
// Domain failures match one of the sentinels below via errors.Is. Typed
// errors carry the offending values and unwrap to the underlying runtime
// failure, if any. I/O errors from readers and writers are wrapped as is.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrAllocation is returned when the device allocator (or the configured
	// memory limit) refuses a request.
	ErrAllocation = errors.New("device allocation failed")

	// ErrCopy is returned when a device transfer fails.
	ErrCopy = errors.New("device copy failed")

	// ErrInvariant is returned when a structural invariant would be violated,
	// e.g. columns of different length or mismatched argument sequences.
	ErrInvariant = errors.New("invariant violated")

	// ErrIndex is returned for out-of-range column or row indices.
	ErrIndex = errors.New("index out of bounds")

	// ErrArgument is returned for arguments of the wrong kind, e.g. a negative
	// byte length or an unsupported element type.
	ErrArgument = errors.New("invalid argument")

	// ErrReleased is returned when a view references a buffer that has
	// already been released.
	ErrReleased = errors.New("buffer already released")
)

// AllocationError describes a refused device allocation.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type AllocationError struct {
	Bytes int64
	cause error
}

// NewAllocationError returns an AllocationError for a request of n bytes.
func NewAllocationError(n int64, cause error) *AllocationError {
	return &AllocationError{Bytes: n, cause: cause}
}

func (e *AllocationError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("device allocation of %d bytes failed", e.Bytes)
	}
	return fmt.Sprintf("device allocation of %d bytes failed: %v", e.Bytes, e.cause)
}

func (e *AllocationError) Unwrap() error { return e.cause }

// Is reports whether target is ErrAllocation.
func (e *AllocationError) Is(target error) bool { return target == ErrAllocation }

// IndexError describes an out-of-range index.
type IndexError struct {
	// What names the indexed dimension ("column", "row").
	What  string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of bounds [0, %d)", e.What, e.Index, e.Len)
}

// Is reports whether target is ErrIndex.
func (e *IndexError) Is(target error) bool { return target == ErrIndex }

// LengthMismatchError is returned when a table is assembled from columns of
// different lengths.
type LengthMismatchError struct {
	Column   int
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("all columns must be of same length: column %d has %d rows, expected %d",
		e.Column, e.Actual, e.Expected)
}

// Is reports whether target is ErrInvariant.
func (e *LengthMismatchError) Is(target error) bool { return target == ErrInvariant }

// Invariantf returns an error wrapping ErrInvariant.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// Argumentf returns an error wrapping ErrArgument.
func Argumentf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgument, fmt.Sprintf(format, args...))
}

// Copyf returns an error wrapping ErrCopy and cause.
func Copyf(cause error, format string, args ...any) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrCopy, fmt.Sprintf(format, args...))
	}
	return fmt.Errorf("%w: %s: %w", ErrCopy, fmt.Sprintf(format, args...), cause)
}
