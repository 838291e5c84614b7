package devframe

import (
	"context"
	"io"
	"time"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/mzegar/devframe/column"
	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/internal/resource"
	"github.com/mzegar/devframe/table"
)

// Session bundles a device, its memory accounting and a compute engine.
// Tables and columns created through a session share them.
type Session struct {
	dev    *device.Device
	rc     *resource.Controller
	engine *compute.Engine
	logger *Logger
	opts   options
}

func newCappedRuntime(capacity int64) device.Runtime {
	return device.NewHostRuntime(device.WithCapacity(capacity))
}

// New creates a session.
func New(opts ...Option) *Session {
	o := applyOptions(opts)

	rc := resource.Global()
	if !o.sharedController {
		rc = resource.NewController(resource.Config{
			MemoryLimitBytes:         o.memoryLimit,
			GCThresholdBytes:         o.gcThreshold,
			TransferLimitBytesPerSec: o.transferLimit,
		})
	}
	dev := device.New(
		device.WithRuntime(o.runtime),
		device.WithResourceController(rc),
		device.WithLogger(o.logger.Logger),
		device.WithMetricsObserver(o.metricsObserver),
	)
	return &Session{
		dev:    dev,
		rc:     rc,
		engine: compute.New(dev, compute.WithParallelism(o.parallelism), compute.WithLogger(o.logger.Logger)),
		logger: o.logger,
		opts:   o,
	}
}

// NewFromConfig creates a session from a loaded configuration. Extra
// options are applied after the configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Session, error) {
	base, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(append(base, opts...)...), nil
}

// Device returns the session device.
func (s *Session) Device() *device.Device { return s.dev }

// Engine returns the session compute engine.
func (s *Session) Engine() *compute.Engine { return s.engine }

// Logger returns the session logger.
func (s *Session) Logger() *Logger { return s.logger }

// Allocate reserves n bytes of device memory.
func (s *Session) Allocate(ctx context.Context, n int64) (*device.Buffer, error) {
	b, err := s.dev.Allocate(n)
	s.logger.LogAllocate(ctx, n, err)
	return b, err
}

// Release frees a buffer allocated through the session.
func (s *Session) Release(ctx context.Context, b *device.Buffer) error {
	n := b.Size()
	err := b.Release()
	s.logger.LogRelease(ctx, n, err)
	return err
}

// NewTable builds a table whose operations run on the session engine.
func (s *Session) NewTable(src table.Source) (*table.Table, error) {
	return table.New(src, s.tableOptions()...)
}

// ReadCSV decodes a CSV stream into a new table.
func (s *Session) ReadCSV(ctx context.Context, r io.Reader, types []dtype.TypeID, opts compute.CSVOptions) (*table.Table, []string, error) {
	start := time.Now()
	t, names, err := table.ReadCSV(ctx, r, types, opts, s.tableOptions()...)
	s.logTableOp(ctx, "read_csv", t, start, err)
	return t, names, err
}

// ReadArrow reads an Arrow IPC file into a new table.
func (s *Session) ReadArrow(ctx context.Context, r io.Reader) (*table.Table, []string, error) {
	start := time.Now()
	t, names, err := table.ReadArrow(ctx, r, s.tableOptions()...)
	s.logTableOp(ctx, "read_arrow", t, start, err)
	return t, names, err
}

// FromArrow uploads an Arrow record into a new table.
func (s *Session) FromArrow(ctx context.Context, rec arrow.Record) (*table.Table, []string, error) {
	start := time.Now()
	t, names, err := table.FromArrow(ctx, rec, s.tableOptions()...)
	s.logTableOp(ctx, "from_arrow", t, start, err)
	return t, names, err
}

func (s *Session) logTableOp(ctx context.Context, op string, t *table.Table, start time.Time, err error) {
	var rows, cols int
	if t != nil {
		rows, cols = t.NumRows(), t.NumColumns()
	}
	s.logger.LogTableOp(ctx, op, rows, cols, time.Since(start), err)
}

func (s *Session) tableOptions() []table.Option {
	return []table.Option{
		table.WithEngine(s.engine),
		table.WithLogger(s.logger.Logger),
		table.WithMetricsObserver(s.opts.metricsObserver),
	}
}

// Stats is a snapshot of session memory accounting.
type Stats struct {
	MemoryUsage     int64
	PeakMemoryUsage int64
	MemoryLimit     int64
	Collections     int64
}

// Stats returns the current memory accounting of the session.
func (s *Session) Stats() Stats {
	return Stats{
		MemoryUsage:     s.rc.MemoryUsage(),
		PeakMemoryUsage: s.rc.PeakMemoryUsage(),
		MemoryLimit:     s.rc.MemoryLimit(),
		Collections:     s.rc.Collections(),
	}
}

// Synchronize waits for all outstanding device work.
func (s *Session) Synchronize() error {
	return s.dev.Synchronize()
}

// FromSlice uploads values into a new column on the session device.
// valid may be nil.
func FromSlice[T dtype.Native](ctx context.Context, s *Session, values []T, valid []bool) (*column.Column, error) {
	return column.FromSlice(ctx, s.dev, values, valid)
}

// FromSliceAs is like FromSlice with an explicit element type.
func FromSliceAs[T dtype.Native](ctx context.Context, s *Session, typ dtype.TypeID, values []T, valid []bool) (*column.Column, error) {
	return column.FromSliceAs(ctx, s.dev, typ, values, valid)
}
