// Package metrics exposes Prometheus instrumentation for the widget core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the widget.
type Metrics struct {
	// Exchange metrics
	ExchangesTotal   *prometheus.CounterVec // labels: kind (text|audio), result (ok|error)
	ExchangeDuration prometheus.Histogram

	// Recording metrics
	RecordingsStarted   prometheus.Counter
	RecordingsCompleted prometheus.Counter
	RecordingsCancelled prometheus.Counter
	RecordingsFailed    prometheus.Counter
	ClipBytes           prometheus.Histogram
}

// New creates and registers all widget metrics. A nil registerer uses the
// default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ExchangesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "widget_exchanges_total",
			Help: "Total number of assistant exchanges by kind and result",
		}, []string{"kind", "result"}),
		ExchangeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "widget_exchange_duration_seconds",
			Help:    "Round-trip time of assistant exchanges",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		RecordingsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "widget_recordings_started_total",
			Help: "Total number of recording sessions started",
		}),
		RecordingsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "widget_recordings_completed_total",
			Help: "Total number of recording sessions that produced a clip",
		}),
		RecordingsCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "widget_recordings_cancelled_total",
			Help: "Total number of recording sessions cancelled without output",
		}),
		RecordingsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "widget_recordings_failed_total",
			Help: "Total number of recording start failures",
		}),
		ClipBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "widget_clip_bytes",
			Help:    "Size of encoded audio clips in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 12), // 1KB to ~4MB
		}),
	}
}
