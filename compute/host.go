package compute

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/bitmask"
	"github.com/mzegar/devframe/view"
)

// kind groups element types by how their bits are interpreted.
type kind uint8

const (
	kindSigned kind = iota
	kindUnsigned
	kindFloat
	kindBool
)

func kindOf(t dtype.TypeID) kind {
	switch {
	case t >= dtype.Uint8 && t <= dtype.Uint64:
		return kindUnsigned
	case t == dtype.Float32 || t == dtype.Float64:
		return kindFloat
	case t == dtype.Bool8:
		return kindBool
	}
	return kindSigned
}

// hostColumn is a host-side staging copy of a column, rebased to offset 0.
type hostColumn struct {
	typ    dtype.TypeID
	width  int
	length int
	data   []byte
	valid  []byte // nil if every row is valid
}

func newHostColumn(typ dtype.TypeID, length int, nullable bool) *hostColumn {
	h := &hostColumn{
		typ:    typ,
		width:  typ.Width(),
		length: length,
		data:   make([]byte, length*typ.Width()),
	}
	if nullable {
		h.valid = bitmask.New(length)
	}
	return h
}

func (h *hostColumn) isValid(i int) bool { return bitmask.Test(h.valid, i) }

func (h *hostColumn) nullCount() int { return bitmask.CountNulls(h.valid, 0, h.length) }

func (h *hostColumn) signed(i int) int64 {
	b := h.data[i*h.width:]
	switch h.width {
	case 1:
		return int64(int8(b[0]))
	case 2:
		return int64(int16(binary.NativeEndian.Uint16(b)))
	case 4:
		return int64(int32(binary.NativeEndian.Uint32(b)))
	}
	return int64(binary.NativeEndian.Uint64(b))
}

func (h *hostColumn) unsigned(i int) uint64 {
	b := h.data[i*h.width:]
	switch h.width {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(binary.NativeEndian.Uint16(b))
	case 4:
		return uint64(binary.NativeEndian.Uint32(b))
	}
	return binary.NativeEndian.Uint64(b)
}

func (h *hostColumn) float(i int) float64 {
	if h.width == 4 {
		return float64(math.Float32frombits(binary.NativeEndian.Uint32(h.data[i*4:])))
	}
	return math.Float64frombits(binary.NativeEndian.Uint64(h.data[i*8:]))
}

func (h *hostColumn) putUnsigned(i int, v uint64) {
	b := h.data[i*h.width:]
	switch h.width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.NativeEndian.PutUint16(b, uint16(v))
	case 4:
		binary.NativeEndian.PutUint32(b, uint32(v))
	default:
		binary.NativeEndian.PutUint64(b, v)
	}
}

func (h *hostColumn) putSigned(i int, v int64) { h.putUnsigned(i, uint64(v)) }

func (h *hostColumn) putFloat(i int, v float64) {
	if h.width == 4 {
		binary.NativeEndian.PutUint32(h.data[i*4:], math.Float32bits(float32(v)))
		return
	}
	binary.NativeEndian.PutUint64(h.data[i*8:], math.Float64bits(v))
}

// copyRow copies row src of from into row dst of h, including validity.
func (h *hostColumn) copyRow(dst int, from *hostColumn, src int) {
	copy(h.data[dst*h.width:(dst+1)*h.width], from.data[src*from.width:(src+1)*from.width])
	if h.valid != nil {
		bitmask.Put(h.valid, dst, from.isValid(src))
	}
}

// index returns row i of an index column as int64.
func (h *hostColumn) index(i int) int64 {
	if kindOf(h.typ) == kindUnsigned {
		return int64(h.unsigned(i))
	}
	return h.signed(i)
}

// download stages a column view on the host.
func download(ctx context.Context, c view.Column) (*hostColumn, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !c.Type.FixedWidth() {
		return nil, errdefs.Argumentf("unsupported column type %s", c.Type)
	}
	h := newHostColumn(c.Type, c.Length, false)
	if c.Length == 0 {
		return h, nil
	}
	dev := c.Device()
	if dev == nil {
		return nil, errdefs.Argumentf("column of %d rows has no data", c.Length)
	}

	if err := dev.CopyToHost(ctx, h.data, c.Data.Add(int64(c.Offset*h.width))); err != nil {
		return nil, err
	}
	if c.Nullable() {
		raw := make([]byte, (c.Offset+c.Length+7)/8)
		if err := c.MaskBuffer().Device().CopyToHost(ctx, raw, c.Mask); err != nil {
			return nil, err
		}
		if c.Offset == 0 {
			h.valid = make([]byte, bitmask.AllocationSize(c.Length))
			copy(h.valid, raw)
		} else {
			h.valid = bitmask.New(c.Length)
			for i := range c.Length {
				bitmask.Put(h.valid, i, bitmask.Test(raw, c.Offset+i))
			}
		}
	}
	c.KeepAlive()
	return h, nil
}

// writeBack copies h over the storage of a mutable view.
func writeBack(ctx context.Context, c view.MutableColumn, h *hostColumn) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Length == 0 {
		return nil
	}
	var raw []byte
	if c.Nullable() {
		raw = make([]byte, (c.Offset+c.Length+7)/8)
		if err := c.MaskBuffer().Device().CopyToHost(ctx, raw, c.Mask); err != nil {
			return err
		}
		for i := range c.Length {
			bitmask.Put(raw, c.Offset+i, h.isValid(i))
		}
	}
	// The mask goes last: until it lands, the column's null count still
	// describes the device mask.
	if err := c.Device().CopyToDevice(ctx, c.Data.Add(int64(c.Offset*h.width)), h.data); err != nil {
		return err
	}
	if raw != nil {
		if err := c.MaskBuffer().Device().CopyToDevice(ctx, c.Mask, raw); err != nil {
			return err
		}
	}
	c.KeepAlive()
	return nil
}

// upload materializes h as a new device result.
func upload(ctx context.Context, dev *device.Device, h *hostColumn) (*Result, error) {
	data, err := dev.FromHost(ctx, h.data)
	if err != nil {
		return nil, err
	}
	r := &Result{Type: h.typ, Length: h.length, Data: data}
	if h.valid != nil {
		valid := h.valid
		if n := bitmask.AllocationSize(h.length); len(valid) < n {
			valid = append(valid, make([]byte, n-len(valid))...)
		}
		mask, err := dev.FromHost(ctx, valid)
		if err != nil {
			_ = data.Release()
			return nil, err
		}
		r.Mask = mask
		r.NullCount = h.nullCount()
	}
	return r, nil
}
