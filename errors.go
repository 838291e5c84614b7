package devframe

import "github.com/mzegar/devframe/errdefs"

// Error sentinels. Every error raised by devframe matches one of these via
// errors.Is.
var (
	ErrAllocation = errdefs.ErrAllocation
	ErrCopy       = errdefs.ErrCopy
	ErrInvariant  = errdefs.ErrInvariant
	ErrIndex      = errdefs.ErrIndex
	ErrArgument   = errdefs.ErrArgument
	ErrReleased   = errdefs.ErrReleased
)

// AllocationError describes a refused device allocation.
type AllocationError = errdefs.AllocationError

// IndexError describes an out-of-range column or row index.
type IndexError = errdefs.IndexError

// LengthMismatchError is returned when a table is assembled from columns of
// different lengths.
type LengthMismatchError = errdefs.LengthMismatchError
