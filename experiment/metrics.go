package experiment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the work done by a harness. Each Metrics owns its registry.
type Metrics struct {
	registry *prometheus.Registry
	trials   *prometheus.CounterVec
	batches  *prometheus.HistogramVec
	points   prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		trials: f.NewCounterVec(prometheus.CounterOpts{
			Name: "absynth_trials_total",
			Help: "Recovered signals by algorithm and outcome.",
		}, []string{"algorithm", "status"}),
		batches: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "absynth_batch_duration_seconds",
			Help:    "Time to recover all trials of one grid point with one algorithm and multiplier.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		points: f.NewCounter(prometheus.CounterOpts{
			Name: "absynth_grid_points_total",
			Help: "Completed (delta, rho) grid points.",
		}),
	}
}

// Registry exposes the metrics for scraping or export.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current metrics in the Prometheus text format,
// for collection by a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
