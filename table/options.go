package table

import (
	"log/slog"

	"github.com/mzegar/devframe/compute"
	"github.com/mzegar/devframe/metrics"
)

type options struct {
	engine  *compute.Engine
	logger  *slog.Logger
	metrics metrics.Observer
}

// Option configures a Table. Tables derived from a table inherit its options.
type Option func(*options)

// WithEngine sets the compute engine operations are forwarded to.
func WithEngine(e *compute.Engine) Option {
	return func(o *options) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithLogger sets the table logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetricsObserver sets the observer receiving table operation events.
func WithMetricsObserver(observer metrics.Observer) Option {
	return func(o *options) {
		if observer != nil {
			o.metrics = observer
		}
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = compute.Default()
	}
	if o.logger == nil {
		o.logger = o.engine.Device().Logger()
	}
	if o.metrics == nil {
		o.metrics = o.engine.Device().Metrics()
	}
	return o
}
