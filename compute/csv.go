package compute

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/view"
)

// CSVOptions controls CSV encoding.
type CSVOptions struct {
	// Header writes (or expects) a first record of column names.
	Header bool
	// Names are the header names written by WriteCSV. Missing names
	// default to the column index.
	Names []string
	// Delimiter is the field separator. If 0, ',' is used.
	Delimiter rune
	// NullValue is the text of a null field.
	NullValue string
	// Compression wraps the whole stream.
	Compression CompressionType
}

func (o CSVOptions) delimiter() rune {
	if o.Delimiter == 0 {
		return ','
	}
	return o.Delimiter
}

// WriteCSV encodes the rows of tv. Timestamps and durations are written as
// integer ticks.
func (e *Engine) WriteCSV(ctx context.Context, w io.Writer, tv view.Table, opts CSVOptions) error {
	cols, err := e.downloadAll(ctx, tv)
	if err != nil {
		return err
	}

	out, closeFn, err := compressWriter(w, opts.Compression)
	if err != nil {
		return errdefs.Argumentf("%v", err)
	}
	cw := csv.NewWriter(out)
	cw.Comma = opts.delimiter()

	record := make([]string, len(cols))
	if opts.Header {
		for i := range record {
			if i < len(opts.Names) {
				record[i] = opts.Names[i]
			} else {
				record[i] = strconv.Itoa(i)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
	}
	for row := range tv.NumRows() {
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		for i, h := range cols {
			if !h.isValid(row) {
				record[i] = opts.NullValue
				continue
			}
			record[i] = formatValue(h, row)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", row, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	if err := closeFn(); err != nil {
		return fmt.Errorf("close %s stream: %w", opts.Compression, err)
	}
	return nil
}

// ReadCSV decodes a CSV stream into one result per entry of types. It
// returns the header names when opts.Header is set.
func (e *Engine) ReadCSV(ctx context.Context, r io.Reader, types []dtype.TypeID, opts CSVOptions) ([]*Result, []string, error) {
	for i, t := range types {
		if !t.FixedWidth() {
			return nil, nil, errdefs.Argumentf("column %d: unsupported type %s", i, t)
		}
	}

	in, done, err := decompressReader(r, opts.Compression)
	if err != nil {
		return nil, nil, errdefs.Argumentf("%v", err)
	}
	defer done()

	cr := csv.NewReader(in)
	cr.Comma = opts.delimiter()
	cr.FieldsPerRecord = len(types)
	cr.ReuseRecord = true

	var names []string
	if opts.Header {
		rec, err := cr.Read()
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("%w: csv header: %w", errdefs.ErrArgument, err)
		}
		names = append(names, rec...)
	}

	cols := make([]*hostColumn, len(types))
	for i, t := range types {
		cols[i] = newHostColumn(t, 0, true)
	}
	for row := 0; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: csv: %w", errdefs.ErrArgument, err)
		}
		if row%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		// FieldsPerRecord 0 means "width of the first record", which an
		// empty type list cannot satisfy.
		if len(rec) != len(cols) {
			return nil, nil, errdefs.Argumentf("csv row %d: %d fields for %d columns", row, len(rec), len(cols))
		}
		for i, field := range rec {
			if err := cols[i].appendField(field, opts.NullValue); err != nil {
				return nil, nil, fmt.Errorf("%w: csv row %d column %d: %w", errdefs.ErrArgument, row, i, err)
			}
		}
	}

	results, err := e.perColumn(ctx, len(cols), func(ctx context.Context, i int) (*Result, error) {
		h := cols[i]
		if h.nullCount() == 0 {
			h.valid = nil
		}
		return upload(ctx, e.dev, h)
	})
	if err != nil {
		return nil, nil, err
	}
	return results, names, nil
}

func formatValue(h *hostColumn, row int) string {
	switch kindOf(h.typ) {
	case kindUnsigned:
		return strconv.FormatUint(h.unsigned(row), 10)
	case kindFloat:
		return strconv.FormatFloat(h.float(row), 'g', -1, h.width*8)
	case kindBool:
		return strconv.FormatBool(h.unsigned(row) != 0)
	}
	return strconv.FormatInt(h.signed(row), 10)
}

// appendField parses one field onto the end of h. h must be nullable.
func (h *hostColumn) appendField(field, nullValue string) error {
	row := h.length
	h.length++
	h.data = append(h.data, make([]byte, h.width)...)
	if len(h.valid)*8 < h.length {
		h.valid = append(h.valid, make([]byte, len(h.valid)+1)...)
	}
	if field == nullValue {
		h.valid[row>>3] &^= 1 << (row & 7)
		return nil
	}
	h.valid[row>>3] |= 1 << (row & 7)

	switch kindOf(h.typ) {
	case kindUnsigned:
		v, err := strconv.ParseUint(field, 10, h.width*8)
		if err != nil {
			return err
		}
		h.putUnsigned(row, v)
	case kindFloat:
		v, err := strconv.ParseFloat(field, h.width*8)
		if err != nil {
			return err
		}
		h.putFloat(row, v)
	case kindBool:
		v, err := strconv.ParseBool(field)
		if err != nil {
			return err
		}
		if v {
			h.putUnsigned(row, 1)
		}
	default:
		v, err := strconv.ParseInt(field, 10, h.width*8)
		if err != nil {
			return err
		}
		h.putSigned(row, v)
	}
	return nil
}
