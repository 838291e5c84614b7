// Package compute is the columnar compute library that tables forward to.
//
// It operates on non-owning views and returns newly allocated device
// buffers as Results. Kernels run on host staging copies; every operation
// synchronizes the device before returning.
package compute

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/dtype"
	"github.com/mzegar/devframe/view"
)

// Result is a column produced by the engine. Ownership of the buffers
// passes to the caller.
type Result struct {
	Type      dtype.TypeID
	Length    int
	Data      *device.Buffer
	Mask      *device.Buffer
	NullCount int
}

// Release frees the result's buffers.
func (r *Result) Release() error {
	if r == nil {
		return nil
	}
	err := r.Data.Release()
	if merr := r.Mask.Release(); err == nil {
		err = merr
	}
	return err
}

// ReleaseAll releases every result, returning the first error.
func ReleaseAll(results []*Result) error {
	var first error
	for _, r := range results {
		if err := r.Release(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Engine runs column operations against one device.
type Engine struct {
	dev         *device.Device
	logger      *slog.Logger
	parallelism int
}

// Option configures an Engine.
type Option func(*Engine)

// WithParallelism limits the number of columns processed concurrently.
// If n <= 0, GOMAXPROCS is used.
func WithParallelism(n int) Option {
	return func(e *Engine) {
		e.parallelism = n
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine allocating results on dev.
func New(dev *device.Device, opts ...Option) *Engine {
	if dev == nil {
		dev = device.Default()
	}
	e := &Engine{
		dev:    dev,
		logger: dev.Logger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.parallelism <= 0 {
		e.parallelism = runtime.GOMAXPROCS(0)
	}
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the engine bound to device.Default.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = New(device.Default())
	})
	return defaultEngine
}

// Device returns the device results are allocated on.
func (e *Engine) Device() *device.Device { return e.dev }

// Parallelism returns the per-operation column concurrency.
func (e *Engine) Parallelism() int { return e.parallelism }

// perColumn runs fn for every column index with bounded concurrency and
// collects the results. On failure, results already produced are released.
func (e *Engine) perColumn(ctx context.Context, n int, fn func(ctx context.Context, i int) (*Result, error)) ([]*Result, error) {
	out := make([]*Result, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i := range n {
		g.Go(func() error {
			r, err := fn(gctx, i)
			if err != nil {
				return err
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = ReleaseAll(out)
		return nil, err
	}
	if err := e.dev.Synchronize(); err != nil {
		_ = ReleaseAll(out)
		return nil, err
	}
	return out, nil
}

// downloadAll stages every column of tv on the host concurrently.
func (e *Engine) downloadAll(ctx context.Context, tv view.Table) ([]*hostColumn, error) {
	cols := tv.Columns()
	out := make([]*hostColumn, len(cols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, c := range cols {
		g.Go(func() error {
			h, err := download(gctx, c)
			if err != nil {
				return err
			}
			out[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tv.KeepAlive()
	return out, nil
}
