package table

import (
	"context"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/dtype"
)

// WriteCSV encodes the table as CSV.
func (t *Table) WriteCSV(ctx context.Context, w io.Writer, opts compute.CSVOptions) (err error) {
	start := time.Now()
	defer func() { t.observe("write_csv", start, t.rows, err) }()

	err = t.o.engine.WriteCSV(ctx, w, t.View(), opts)
	t.keepAlive()
	return err
}

// ReadCSV decodes a CSV stream into a new table with one column per type.
// It also returns the header names when opts.Header is set.
func ReadCSV(ctx context.Context, r io.Reader, types []dtype.TypeID, opts compute.CSVOptions, tableOpts ...Option) (*Table, []string, error) {
	o := applyOptions(tableOpts)
	start := time.Now()

	results, names, err := o.engine.ReadCSV(ctx, r, types, opts)
	if err != nil {
		o.metrics.OnTableOp("read_csv", 0, time.Since(start), err)
		return nil, nil, err
	}
	t, err := build(FromResults(results...), o)
	if err != nil {
		o.metrics.OnTableOp("read_csv", 0, time.Since(start), err)
		return nil, nil, err
	}
	t.observe("read_csv", start, t.rows, nil)
	return t, names, nil
}

// ToArrow copies the table into an Arrow record. The caller must Release
// the record.
func (t *Table) ToArrow(ctx context.Context, names []string) (_ arrow.Record, err error) {
	start := time.Now()
	defer func() { t.observe("to_arrow", start, t.rows, err) }()

	rec, err := t.o.engine.ToArrow(ctx, t.View(), names)
	t.keepAlive()
	return rec, err
}

// WriteArrow writes the table as an Arrow IPC file.
func (t *Table) WriteArrow(ctx context.Context, w io.Writer, names []string) (err error) {
	start := time.Now()
	defer func() { t.observe("write_arrow", start, t.rows, err) }()

	err = t.o.engine.WriteArrow(ctx, w, t.View(), names)
	t.keepAlive()
	return err
}

// FromArrow uploads an Arrow record into a new table and returns its field
// names.
func FromArrow(ctx context.Context, rec arrow.Record, opts ...Option) (*Table, []string, error) {
	o := applyOptions(opts)
	results, names, err := o.engine.FromArrow(ctx, rec)
	if err != nil {
		return nil, nil, err
	}
	t, err := build(FromResults(results...), o)
	if err != nil {
		return nil, nil, err
	}
	return t, names, nil
}

// ReadArrow reads an Arrow IPC file into a new table and returns its field
// names.
func ReadArrow(ctx context.Context, r io.Reader, opts ...Option) (*Table, []string, error) {
	o := applyOptions(opts)
	start := time.Now()

	results, names, err := o.engine.ReadArrow(ctx, r)
	if err != nil {
		o.metrics.OnTableOp("read_arrow", 0, time.Since(start), err)
		return nil, nil, err
	}
	t, err := build(FromResults(results...), o)
	if err != nil {
		o.metrics.OnTableOp("read_arrow", 0, time.Since(start), err)
		return nil, nil, err
	}
	t.observe("read_arrow", start, t.rows, nil)
	return t, names, nil
}
