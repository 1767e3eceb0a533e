package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Dataset outcomes counted by Metrics
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Metrics holds the prometheus collectors of a batch run
type Metrics struct {
	datasets *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

// NewMetrics creates the batch collectors and registers them on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		datasets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mlcore",
			Subsystem: "batch",
			Name:      "datasets_total",
			Help:      "Datasets processed by outcome",
		}, []string{"status"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mlcore",
			Subsystem: "batch",
			Name:      "dataset_duration_seconds",
			Help:      "Time spent cross-validating a dataset",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "mlcore",
			Subsystem: "batch",
			Name:      "jobs_in_flight",
			Help:      "Jobs being processed",
		}),
	}
}

func (m *Metrics) record(status string, seconds float64) {
	m.datasets.WithLabelValues(status).Inc()
	m.duration.Observe(seconds)
}
