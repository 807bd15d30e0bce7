package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	rebuilds     *prometheus.CounterVec
	estimates    *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastEstimate *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		rebuilds: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gascurve_model_rebuilds_total",
				Help: "Total number of successful model rebuilds",
			},
			[]string{"series"},
		),
		estimates: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gascurve_estimates_total",
				Help: "Total number of price estimates served, by query kind",
			},
			[]string{"kind"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gascurve_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastEstimate: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gascurve_last_estimate",
				Help: "Last estimated price for a series",
			},
			[]string{"series"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gascurve_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordRebuild records a completed model rebuild.
func (r *Recorder) RecordRebuild(series string) {
	r.rebuilds.WithLabelValues(series).Inc()
}

// RecordEstimate records a served estimate by query kind.
func (r *Recorder) RecordEstimate(kind string) {
	r.estimates.WithLabelValues(kind).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordLastEstimate records the most recent estimate for a series.
func (r *Recorder) RecordLastEstimate(series string, price float64) {
	r.lastEstimate.WithLabelValues(series).Set(price)
}
