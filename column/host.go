package column

import (
	"context"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/bitmask"
)

// FromSlice uploads values into a new column of the default type for T.
// valid may be nil, otherwise it flags each row as valid or null.
func FromSlice[T dtype.Native](ctx context.Context, dev *device.Device, values []T, valid []bool) (*Column, error) {
	return FromSliceAs(ctx, dev, dtype.Of[T](), values, valid)
}

// FromSliceAs is like FromSlice with an explicit element type, e.g. a
// timestamp type for int64 values.
func FromSliceAs[T dtype.Native](ctx context.Context, dev *device.Device, typ dtype.TypeID, values []T, valid []bool) (*Column, error) {
	if !dtype.Compatible[T](typ) {
		return nil, errdefs.Argumentf("%T values cannot be stored as %s", *new(T), typ)
	}
	if valid != nil && len(valid) != len(values) {
		return nil, errdefs.Invariantf("%d validity flags for %d values", len(valid), len(values))
	}

	data, err := dev.FromHost(ctx, dtype.Bytes(values))
	if err != nil {
		return nil, err
	}
	if valid == nil {
		return New(typ, len(values), data)
	}

	bits := bitmask.FromBools(valid)
	mask, err := dev.FromHost(ctx, bits)
	if err != nil {
		_ = data.Release()
		return nil, err
	}
	col, err := New(typ, len(values), data, WithNullMask(mask, bitmask.CountNulls(bits, 0, len(valid))))
	if err != nil {
		_ = data.Release()
		_ = mask.Release()
		return nil, err
	}
	return col, nil
}

// ToSlice downloads the column. valid is nil when the column has no mask.
func ToSlice[T dtype.Native](ctx context.Context, c *Column) (values []T, valid []bool, err error) {
	if !dtype.Compatible[T](c.typ) {
		return nil, nil, errdefs.Argumentf("column of %s cannot be read as %T", c.typ, *new(T))
	}
	values = make([]T, c.size)
	if c.size > 0 {
		if err := c.data.Download(ctx, dtype.Bytes(values)); err != nil {
			return nil, nil, err
		}
	}
	if c.mask != nil {
		host := make([]byte, (c.size+7)/8)
		if err := c.mask.Download(ctx, host); err != nil {
			return nil, nil, err
		}
		valid = bitmask.Bools(host, 0, c.size)
	}
	return values, valid, nil
}
