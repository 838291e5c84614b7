package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports device and table events as Prometheus metrics.
type PrometheusObserver struct {
	allocations *prometheus.CounterVec
	releases    *prometheus.CounterVec
	liveBytes   prometheus.Gauge
	copyBytes   *prometheus.CounterVec
	tableOps    *prometheus.HistogramVec
}

// NewPrometheusObserver creates the collectors under namespace and registers
// them with reg. If reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusObserver(reg prometheus.Registerer, namespace string) (*PrometheusObserver, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	p := &PrometheusObserver{
		allocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "allocations_total",
			Help:      "Device allocation attempts by result.",
		}, []string{"result"}),
		releases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "releases_total",
			Help:      "Device free attempts by trigger and result.",
		}, []string{"trigger", "result"}),
		liveBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "live_bytes",
			Help:      "Device bytes currently allocated.",
		}),
		copyBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "device",
			Name:      "copy_bytes_total",
			Help:      "Bytes transferred by copy kind.",
		}, []string{"kind"}),
		tableOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "table",
			Name:      "operation_duration_seconds",
			Help:      "Table operation latency by operation and result.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"op", "result"}),
	}

	for _, c := range []prometheus.Collector{p.allocations, p.releases, p.liveBytes, p.copyBytes, p.tableOps} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// OnAllocate implements Observer.
func (p *PrometheusObserver) OnAllocate(bytes int64, err error) {
	p.allocations.WithLabelValues(result(err)).Inc()
	if err == nil {
		p.liveBytes.Add(float64(bytes))
	}
}

// OnRelease implements Observer.
func (p *PrometheusObserver) OnRelease(bytes int64, fromCollector bool, err error) {
	trigger := "explicit"
	if fromCollector {
		trigger = "collector"
	}
	p.releases.WithLabelValues(trigger, result(err)).Inc()
	if err == nil {
		p.liveBytes.Sub(float64(bytes))
	}
}

// OnCopy implements Observer.
func (p *PrometheusObserver) OnCopy(kind string, bytes int64, _ time.Duration, err error) {
	if err == nil {
		p.copyBytes.WithLabelValues(kind).Add(float64(bytes))
	}
}

// OnTableOp implements Observer.
func (p *PrometheusObserver) OnTableOp(op string, _ int, duration time.Duration, err error) {
	p.tableOps.WithLabelValues(op, result(err)).Observe(duration.Seconds())
}
