package device

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mzegar/devframe/errdefs"
	"github.com/mzegar/devframe/internal/resource"
	"github.com/mzegar/devframe/metrics"
)

// Device binds a Runtime to external-memory accounting, logging and metrics.
// Device is safe for concurrent use if its Runtime is.
type Device struct {
	rt      Runtime
	rc      *resource.Controller
	logger  *slog.Logger
	metrics metrics.Observer
}

// Option defines a configuration option for a Device.
type Option func(*Device)

// WithRuntime sets the device runtime.
func WithRuntime(rt Runtime) Option {
	return func(d *Device) {
		if rt != nil {
			d.rt = rt
		}
	}
}

// WithResourceController sets the controller that accounts for device memory.
func WithResourceController(rc *resource.Controller) Option {
	return func(d *Device) {
		d.rc = rc
	}
}

// WithMemoryLimit creates a private controller limiting device memory to bytes.
// If set to 0, memory is unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(d *Device) {
		d.rc = resource.NewController(resource.Config{
			MemoryLimitBytes: bytes,
		})
	}
}

// WithLogger sets the logger for the device.
func WithLogger(l *slog.Logger) Option {
	return func(d *Device) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMetricsObserver sets the metrics observer for the device.
func WithMetricsObserver(observer metrics.Observer) Option {
	return func(d *Device) {
		if observer != nil {
			d.metrics = observer
		}
	}
}

// New creates a Device. Without options it uses a fresh HostRuntime and the
// process-wide resource controller.
func New(opts ...Option) *Device {
	d := &Device{
		rc:      resource.Global(),
		logger:  slog.New(slog.DiscardHandler),
		metrics: metrics.NoopObserver{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.rt == nil {
		d.rt = NewHostRuntime()
	}
	return d
}

var (
	defaultOnce sync.Once
	defaultDev  *Device
)

// Default returns the process-wide device.
func Default() *Device {
	defaultOnce.Do(func() {
		defaultDev = New()
	})
	return defaultDev
}

// Runtime returns the underlying runtime.
func (d *Device) Runtime() Runtime { return d.rt }

// Controller returns the resource controller accounting for this device.
func (d *Device) Controller() *resource.Controller { return d.rc }

// Logger returns the device logger.
func (d *Device) Logger() *slog.Logger { return d.logger }

// Metrics returns the metrics observer.
func (d *Device) Metrics() metrics.Observer { return d.metrics }

// MemoryUsage returns the external memory currently accounted by the
// device's controller.
func (d *Device) MemoryUsage() int64 { return d.rc.MemoryUsage() }

// Synchronize waits for all issued device work to complete.
func (d *Device) Synchronize() error {
	if err := d.rt.Synchronize(); err != nil {
		return errdefs.Copyf(err, "synchronize %s", d.rt.Name())
	}
	return nil
}

// CopyToDevice copies src into device memory at dst and synchronizes.
func (d *Device) CopyToDevice(ctx context.Context, dst Ptr, src []byte) error {
	if len(src) == 0 {
		return nil
	}
	if err := d.rc.AcquireTransfer(ctx, len(src)); err != nil {
		return err
	}
	start := time.Now()
	err := d.rt.CopyToDevice(dst, src)
	if err == nil {
		err = d.rt.Synchronize()
	}
	d.metrics.OnCopy(CopyHostToDevice, int64(len(src)), time.Since(start), err)
	if err != nil {
		return errdefs.Copyf(err, "host to device %d bytes", len(src))
	}
	return nil
}

// CopyToHost copies device memory at src into dst and synchronizes.
func (d *Device) CopyToHost(ctx context.Context, dst []byte, src Ptr) error {
	if len(dst) == 0 {
		return nil
	}
	if err := d.rc.AcquireTransfer(ctx, len(dst)); err != nil {
		return err
	}
	start := time.Now()
	err := d.rt.Synchronize()
	if err == nil {
		err = d.rt.CopyToHost(dst, src)
	}
	d.metrics.OnCopy(CopyDeviceToHost, int64(len(dst)), time.Since(start), err)
	if err != nil {
		return errdefs.Copyf(err, "device to host %d bytes", len(dst))
	}
	return nil
}

// CopyDevice copies n bytes between device addresses and synchronizes.
func (d *Device) CopyDevice(dst, src Ptr, n int64) error {
	if n == 0 {
		return nil
	}
	start := time.Now()
	err := d.rt.CopyDevice(dst, src, n)
	if err == nil {
		err = d.rt.Synchronize()
	}
	d.metrics.OnCopy(CopyDeviceToDevice, n, time.Since(start), err)
	if err != nil {
		return errdefs.Copyf(err, "device to device %d bytes", n)
	}
	return nil
}
