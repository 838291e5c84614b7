// Package column implements an owning device column: a typed data buffer,
// an optional validity mask and the mask's null count.
package column

import (
	"context"
	"runtime"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/bitmask"
	"github.com/mzegar/devframe/view"
)

// UnknownNullCount requests that New derive the null count from the mask.
const UnknownNullCount = -1

// Column owns a device data buffer and an optional null mask.
//
// A Column is not safe for concurrent mutation.
type Column struct {
	typ       dtype.TypeID
	size      int
	data      *device.Buffer
	mask      *device.Buffer
	nullCount int
}

type options struct {
	mask      *device.Buffer
	nullCount int
}

// Option configures New.
type Option func(*options)

// WithNullMask attaches a validity mask. nullCount may be UnknownNullCount.
func WithNullMask(mask *device.Buffer, nullCount int) Option {
	return func(o *options) {
		o.mask = mask
		o.nullCount = nullCount
	}
}

// New wraps an existing data buffer holding length elements of typ.
// The column takes ownership of data and of the mask, if any.
func New(typ dtype.TypeID, length int, data *device.Buffer, opts ...Option) (*Column, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if !typ.FixedWidth() {
		return nil, errdefs.Argumentf("unsupported column type %s", typ)
	}
	if length < 0 {
		return nil, errdefs.Argumentf("negative column length %d", length)
	}
	need := int64(length) * int64(typ.Width())
	if data == nil {
		if need > 0 {
			return nil, errdefs.Argumentf("column of %d rows requires a data buffer", length)
		}
	} else {
		if data.Released() {
			return nil, errdefs.ErrReleased
		}
		if data.Size() < need {
			return nil, errdefs.Invariantf("data buffer of %d bytes too small for %d rows of %s", data.Size(), length, typ)
		}
	}

	nullCount := o.nullCount
	if o.mask != nil {
		if o.mask.Released() {
			return nil, errdefs.ErrReleased
		}
		if o.mask.Size()*8 < int64(length) {
			return nil, errdefs.Invariantf("null mask of %d bits shorter than %d rows", o.mask.Size()*8, length)
		}
		if nullCount == UnknownNullCount {
			n, err := countNulls(context.Background(), o.mask, length)
			if err != nil {
				return nil, err
			}
			nullCount = n
		}
	} else if nullCount == UnknownNullCount {
		nullCount = 0
	}
	if nullCount < 0 || nullCount > length {
		return nil, errdefs.Invariantf("null count %d outside [0, %d]", nullCount, length)
	}
	if nullCount > 0 && o.mask == nil {
		return nil, errdefs.Invariantf("null count %d without a null mask", nullCount)
	}

	return &Column{
		typ:       typ,
		size:      length,
		data:      data,
		mask:      o.mask,
		nullCount: nullCount,
	}, nil
}

func countNulls(ctx context.Context, mask *device.Buffer, length int) (int, error) {
	if length == 0 {
		return 0, nil
	}
	host := make([]byte, (length+7)/8)
	if err := mask.Download(ctx, host); err != nil {
		return 0, err
	}
	return bitmask.CountNulls(host, 0, length), nil
}

// View returns a read-only descriptor of the column. It is built on every
// call and must not outlive the column.
func (c *Column) View() view.Column {
	return view.NewColumn(c.typ, c.size, c.data, c.mask, c.nullCount)
}

// MutableView returns a writable descriptor of the column. After mutating
// the mask through it, callers must update the null count with SetNullCount.
func (c *Column) MutableView() view.MutableColumn {
	return view.NewMutableColumn(c.typ, c.size, c.data, c.mask, c.nullCount)
}

// Size returns the number of rows.
func (c *Column) Size() int { return c.size }

// Type returns the element type.
func (c *Column) Type() dtype.TypeID { return c.typ }

// NullCount returns the number of null rows.
func (c *Column) NullCount() int { return c.nullCount }

// Nullable reports whether the column has a null mask.
func (c *Column) Nullable() bool { return c.mask != nil }

// HasNulls reports whether any row is null.
func (c *Column) HasNulls() bool { return c.nullCount > 0 }

// Data returns the data buffer. It may be nil for an empty column.
func (c *Column) Data() *device.Buffer { return c.data }

// Mask returns the null mask buffer, or nil.
func (c *Column) Mask() *device.Buffer { return c.mask }

// SetNullCount records the null count after an in-place mutation.
func (c *Column) SetNullCount(n int) error {
	if n < 0 || n > c.size {
		return errdefs.Invariantf("null count %d outside [0, %d]", n, c.size)
	}
	if n > 0 && c.mask == nil {
		return errdefs.Invariantf("null count %d without a null mask", n)
	}
	c.nullCount = n
	return nil
}

// Release frees the column's buffers. It is idempotent.
func (c *Column) Release() error {
	err := c.data.Release()
	if merr := c.mask.Release(); err == nil {
		err = merr
	}
	return err
}

// Released reports whether the data buffer has been released.
func (c *Column) Released() bool {
	return c.data != nil && c.data.Released()
}

// KeepAlive keeps the column and its buffers reachable up to this call.
func (c *Column) KeepAlive() {
	runtime.KeepAlive(c)
}
