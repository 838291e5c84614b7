package compute

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/bitmask"
	"github.com/mzegar/devframe/view"
)

// ArrowType returns the Arrow type matching t.
func ArrowType(t dtype.TypeID) (arrow.DataType, error) {
	switch t {
	case dtype.Int8:
		return arrow.PrimitiveTypes.Int8, nil
	case dtype.Int16:
		return arrow.PrimitiveTypes.Int16, nil
	case dtype.Int32:
		return arrow.PrimitiveTypes.Int32, nil
	case dtype.Int64:
		return arrow.PrimitiveTypes.Int64, nil
	case dtype.Uint8:
		return arrow.PrimitiveTypes.Uint8, nil
	case dtype.Uint16:
		return arrow.PrimitiveTypes.Uint16, nil
	case dtype.Uint32:
		return arrow.PrimitiveTypes.Uint32, nil
	case dtype.Uint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case dtype.Float32:
		return arrow.PrimitiveTypes.Float32, nil
	case dtype.Float64:
		return arrow.PrimitiveTypes.Float64, nil
	case dtype.Bool8:
		return arrow.FixedWidthTypes.Boolean, nil
	case dtype.TimestampDays:
		return arrow.PrimitiveTypes.Date32, nil
	case dtype.TimestampSeconds:
		return &arrow.TimestampType{Unit: arrow.Second}, nil
	case dtype.TimestampMillis:
		return &arrow.TimestampType{Unit: arrow.Millisecond}, nil
	case dtype.TimestampMicros:
		return &arrow.TimestampType{Unit: arrow.Microsecond}, nil
	case dtype.TimestampNanos:
		return &arrow.TimestampType{Unit: arrow.Nanosecond}, nil
	case dtype.DurationSeconds:
		return &arrow.DurationType{Unit: arrow.Second}, nil
	case dtype.DurationMillis:
		return &arrow.DurationType{Unit: arrow.Millisecond}, nil
	case dtype.DurationMicros:
		return &arrow.DurationType{Unit: arrow.Microsecond}, nil
	case dtype.DurationNanos:
		return &arrow.DurationType{Unit: arrow.Nanosecond}, nil
	}
	return nil, errdefs.Argumentf("no arrow type for %s", t)
}

// TypeFromArrow returns the type id matching an Arrow type.
func TypeFromArrow(dt arrow.DataType) (dtype.TypeID, error) {
	switch dt.ID() {
	case arrow.INT8:
		return dtype.Int8, nil
	case arrow.INT16:
		return dtype.Int16, nil
	case arrow.INT32:
		return dtype.Int32, nil
	case arrow.INT64:
		return dtype.Int64, nil
	case arrow.UINT8:
		return dtype.Uint8, nil
	case arrow.UINT16:
		return dtype.Uint16, nil
	case arrow.UINT32:
		return dtype.Uint32, nil
	case arrow.UINT64:
		return dtype.Uint64, nil
	case arrow.FLOAT32:
		return dtype.Float32, nil
	case arrow.FLOAT64:
		return dtype.Float64, nil
	case arrow.BOOL:
		return dtype.Bool8, nil
	case arrow.DATE32:
		return dtype.TimestampDays, nil
	case arrow.TIMESTAMP:
		switch dt.(*arrow.TimestampType).Unit {
		case arrow.Second:
			return dtype.TimestampSeconds, nil
		case arrow.Millisecond:
			return dtype.TimestampMillis, nil
		case arrow.Microsecond:
			return dtype.TimestampMicros, nil
		case arrow.Nanosecond:
			return dtype.TimestampNanos, nil
		}
	case arrow.DURATION:
		switch dt.(*arrow.DurationType).Unit {
		case arrow.Second:
			return dtype.DurationSeconds, nil
		case arrow.Millisecond:
			return dtype.DurationMillis, nil
		case arrow.Microsecond:
			return dtype.DurationMicros, nil
		case arrow.Nanosecond:
			return dtype.DurationNanos, nil
		}
	}
	return dtype.Empty, errdefs.Argumentf("unsupported arrow type %s", dt)
}

// ToArrow copies tv into an Arrow record. names label the fields; missing
// names default to the column index. The caller must Release the record.
func (e *Engine) ToArrow(ctx context.Context, tv view.Table, names []string) (arrow.Record, error) {
	cols, err := e.downloadAll(ctx, tv)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, len(cols))
	for i, h := range cols {
		dt, err := ArrowType(h.typ)
		if err != nil {
			return nil, err
		}
		name := strconv.Itoa(i)
		if i < len(names) {
			name = names[i]
		}
		fields[i] = arrow.Field{Name: name, Type: dt, Nullable: h.valid != nil}
	}
	schema := arrow.NewSchema(fields, nil)

	pool := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(pool, schema)
	defer builder.Release()

	for i, h := range cols {
		b := builder.Field(i)
		b.Reserve(h.length)
		for row := range h.length {
			if !h.isValid(row) {
				b.AppendNull()
				continue
			}
			if err := appendValue(b, h, row); err != nil {
				return nil, err
			}
		}
	}
	return builder.NewRecord(), nil
}

func appendValue(b array.Builder, h *hostColumn, row int) error {
	switch b := b.(type) {
	case *array.Int8Builder:
		b.Append(int8(h.signed(row)))
	case *array.Int16Builder:
		b.Append(int16(h.signed(row)))
	case *array.Int32Builder:
		b.Append(int32(h.signed(row)))
	case *array.Int64Builder:
		b.Append(h.signed(row))
	case *array.Uint8Builder:
		b.Append(uint8(h.unsigned(row)))
	case *array.Uint16Builder:
		b.Append(uint16(h.unsigned(row)))
	case *array.Uint32Builder:
		b.Append(uint32(h.unsigned(row)))
	case *array.Uint64Builder:
		b.Append(h.unsigned(row))
	case *array.Float32Builder:
		b.Append(float32(h.float(row)))
	case *array.Float64Builder:
		b.Append(h.float(row))
	case *array.BooleanBuilder:
		b.Append(h.unsigned(row) != 0)
	case *array.Date32Builder:
		b.Append(arrow.Date32(h.signed(row)))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(h.signed(row)))
	case *array.DurationBuilder:
		b.Append(arrow.Duration(h.signed(row)))
	default:
		return fmt.Errorf("unsupported builder type: %T", b)
	}
	return nil
}

// FromArrow uploads every column of rec. It returns the field names.
func (e *Engine) FromArrow(ctx context.Context, rec arrow.Record) ([]*Result, []string, error) {
	arrs := make([]arrow.Array, rec.NumCols())
	for i := range arrs {
		arrs[i] = rec.Column(i)
	}
	return e.fromArrays(ctx, rec.Schema(), arrs)
}

func (e *Engine) fromArrays(ctx context.Context, schema *arrow.Schema, arrs []arrow.Array) ([]*Result, []string, error) {
	fields := schema.Fields()
	names := make([]string, len(fields))
	hosts := make([]*hostColumn, len(fields))
	for i, f := range fields {
		names[i] = f.Name
		typ, err := TypeFromArrow(f.Type)
		if err != nil {
			return nil, nil, err
		}
		arr := arrs[i]
		h := newHostColumn(typ, arr.Len(), arr.NullN() > 0)
		for row := range arr.Len() {
			if arr.IsNull(row) {
				bitmask.Clear(h.valid, row)
				continue
			}
			if err := putArrowValue(h, arr, row); err != nil {
				return nil, nil, err
			}
		}
		hosts[i] = h
	}

	results, err := e.perColumn(ctx, len(hosts), func(ctx context.Context, i int) (*Result, error) {
		return upload(ctx, e.dev, hosts[i])
	})
	if err != nil {
		return nil, nil, err
	}
	return results, names, nil
}

func putArrowValue(h *hostColumn, arr arrow.Array, row int) error {
	switch a := arr.(type) {
	case *array.Int8:
		h.putSigned(row, int64(a.Value(row)))
	case *array.Int16:
		h.putSigned(row, int64(a.Value(row)))
	case *array.Int32:
		h.putSigned(row, int64(a.Value(row)))
	case *array.Int64:
		h.putSigned(row, a.Value(row))
	case *array.Uint8:
		h.putUnsigned(row, uint64(a.Value(row)))
	case *array.Uint16:
		h.putUnsigned(row, uint64(a.Value(row)))
	case *array.Uint32:
		h.putUnsigned(row, uint64(a.Value(row)))
	case *array.Uint64:
		h.putUnsigned(row, a.Value(row))
	case *array.Float32:
		h.putFloat(row, float64(a.Value(row)))
	case *array.Float64:
		h.putFloat(row, a.Value(row))
	case *array.Boolean:
		if a.Value(row) {
			h.putUnsigned(row, 1)
		}
	case *array.Date32:
		h.putSigned(row, int64(a.Value(row)))
	case *array.Timestamp:
		h.putSigned(row, int64(a.Value(row)))
	case *array.Duration:
		h.putSigned(row, int64(a.Value(row)))
	default:
		return errdefs.Argumentf("unsupported arrow array %T", arr)
	}
	return nil
}

// WriteArrow writes tv as an Arrow IPC file holding one record batch.
func (e *Engine) WriteArrow(ctx context.Context, w io.Writer, tv view.Table, names []string) error {
	rec, err := e.ToArrow(ctx, tv, names)
	if err != nil {
		return err
	}
	defer rec.Release()

	pool := memory.NewGoAllocator()
	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(pool))
	if err != nil {
		return fmt.Errorf("failed to create Arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow writer: %w", err)
	}
	return nil
}

// ReadArrow reads an Arrow IPC file. Record batches are concatenated.
func (e *Engine) ReadArrow(ctx context.Context, r io.Reader) ([]*Result, []string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Arrow data: %w", err)
	}
	pool := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(bytes.NewReader(data), ipc.WithAllocator(pool))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: failed to create Arrow reader: %w", errdefs.ErrArgument, err)
	}
	defer fr.Close()

	schema := fr.Schema()
	chunks := make([][]arrow.Array, schema.NumFields())
	for i := range fr.NumRecords() {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: failed to read record %d: %w", errdefs.ErrArgument, i, err)
		}
		for j := range chunks {
			col := rec.Column(j)
			col.Retain()
			chunks[j] = append(chunks[j], col)
		}
	}
	defer func() {
		for _, cs := range chunks {
			for _, c := range cs {
				c.Release()
			}
		}
	}()

	arrs := make([]arrow.Array, len(chunks))
	for j, cs := range chunks {
		var arr arrow.Array
		if len(cs) == 0 {
			arr = array.MakeArrayOfNull(pool, schema.Field(j).Type, 0)
		} else {
			arr, err = array.Concatenate(cs, pool)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to concatenate column %d: %w", j, err)
			}
		}
		defer arr.Release()
		arrs[j] = arr
	}
	return e.fromArrays(ctx, schema, arrs)
}
