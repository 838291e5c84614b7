// Package view provides non-owning descriptors of device columns and tables.
//
// A view carries raw device addresses for the compute library together with
// references to the buffers that own them. Views are cheap to build and must
// not be cached: they are only valid while the owning buffers are live.
package view

import (
	"runtime"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
)

// Column is a read-only view of one column.
type Column struct {
	Type      dtype.TypeID
	Length    int
	Offset    int
	Data      device.Ptr
	Mask      device.Ptr
	NullCount int

	data *device.Buffer
	mask *device.Buffer
}

// NewColumn describes length rows of typ stored in data, with an optional
// validity mask. mask may be nil.
func NewColumn(typ dtype.TypeID, length int, data, mask *device.Buffer, nullCount int) Column {
	c := Column{
		Type:      typ,
		Length:    length,
		NullCount: nullCount,
		data:      data,
		mask:      mask,
	}
	if data != nil {
		c.Data = data.Ptr()
	}
	if mask != nil {
		c.Mask = mask.Ptr()
	}
	return c
}

// Nullable reports whether the column carries a validity mask.
func (c Column) Nullable() bool { return !c.Mask.IsNil() }

// HasNulls reports whether at least one row is null.
func (c Column) HasNulls() bool { return c.NullCount > 0 }

// DataBuffer returns the buffer owning the data region.
func (c Column) DataBuffer() *device.Buffer { return c.data }

// MaskBuffer returns the buffer owning the mask region, or nil.
func (c Column) MaskBuffer() *device.Buffer { return c.mask }

// Device returns the device holding the column, or nil for a column
// without data.
func (c Column) Device() *device.Device {
	if c.data == nil {
		return nil
	}
	return c.data.Device()
}

// Validate reports errdefs.ErrReleased if an owning buffer was released
// after the view was taken.
func (c Column) Validate() error {
	if c.data != nil && c.data.Released() {
		return errdefs.ErrReleased
	}
	if c.mask != nil && c.mask.Released() {
		return errdefs.ErrReleased
	}
	return nil
}

// KeepAlive keeps the owning buffers reachable up to this call.
func (c Column) KeepAlive() {
	runtime.KeepAlive(c.data)
	runtime.KeepAlive(c.mask)
}

// MutableColumn is a view through which the compute library may write
// data, mask and null count in place.
type MutableColumn struct {
	Column
}

// NewMutableColumn is like NewColumn for a writable view.
func NewMutableColumn(typ dtype.TypeID, length int, data, mask *device.Buffer, nullCount int) MutableColumn {
	return MutableColumn{Column: NewColumn(typ, length, data, mask, nullCount)}
}

// ReadOnly returns the read-only view of the same column.
func (c MutableColumn) ReadOnly() Column { return c.Column }
