package devframe

import (
	"github.com/mzegar/devframe/device"
	"github.com/mzegar/devframe/metrics"
)

type options struct {
	logger           *Logger
	metricsObserver  metrics.Observer
	runtime          device.Runtime
	memoryLimit      int64
	gcThreshold      int64
	transferLimit    int64
	parallelism      int
	sharedController bool
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger. Pass NoopLogger() to disable logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsObserver configures an observer for device and table events.
// Pass nil to disable metrics collection.
//
// Example with BasicObserver:
//
//	obs := &metrics.BasicObserver{}
//	s := devframe.New(devframe.WithMetricsObserver(obs))
//	// ... use session ...
//	stats := obs.Stats()
//	fmt.Printf("Live device bytes: %d\n", stats.LiveBytes())
func WithMetricsObserver(observer metrics.Observer) Option {
	return func(o *options) {
		o.metricsObserver = observer
	}
}

// WithRuntime sets the device runtime. The default is a HostRuntime.
func WithRuntime(rt device.Runtime) Option {
	return func(o *options) {
		o.runtime = rt
	}
}

// WithMemoryLimit caps the device memory the session may hold.
// If 0, memory is unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithGCThreshold sets the growth in device memory after which a garbage
// collection is requested so unreachable buffers are released.
// If 0, the default is used; negative disables the hook.
func WithGCThreshold(bytes int64) Option {
	return func(o *options) {
		o.gcThreshold = bytes
	}
}

// WithTransferLimit caps host/device transfer throughput in bytes per second.
// If 0, transfers are unlimited.
func WithTransferLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.transferLimit = bytesPerSec
	}
}

// WithParallelism limits the number of columns processed concurrently by
// the compute engine. If <= 0, GOMAXPROCS is used.
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithSharedController makes the session account device memory in the
// process-wide controller instead of a private one. Limits set through
// options are then ignored.
func WithSharedController() Option {
	return func(o *options) {
		o.sharedController = true
	}
}

func applyOptions(opts []Option) options {
	o := options{
		logger:          NoopLogger(),
		metricsObserver: metrics.NoopObserver{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metricsObserver == nil {
		o.metricsObserver = metrics.NoopObserver{}
	}
	return o
}
