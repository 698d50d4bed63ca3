package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector provides widget lifecycle metrics.
type Collector struct {
	FetchesTotal    *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	MountedWidgets  prometheus.Gauge
	DaysPerForecast prometheus.Histogram
}

// NewCollector registers the collector's metrics on reg under namespace.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "forecast_fetches_total",
				Help:      "Total number of settled forecast fetches by outcome",
			},
			[]string{"outcome"}, // "ok" or an error kind
		),

		FetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forecast_fetch_duration_seconds",
				Help:      "Duration of fetch-and-aggregate cycles in seconds",
				Buckets:   []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
		),

		MountedWidgets: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mounted_widgets",
				Help:      "Number of currently mounted widgets",
			},
		),

		DaysPerForecast: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "forecast_days",
				Help:      "Number of day cards produced per successful fetch",
				Buckets:   []float64{1, 2, 3, 5, 7, 10, 14, 16},
			},
		),
	}
}

// ObserveFetch records a settled fetch.
func (c *Collector) ObserveFetch(outcome string, elapsed time.Duration, days int) {
	c.FetchesTotal.WithLabelValues(outcome).Inc()
	if elapsed > 0 {
		c.FetchDuration.Observe(elapsed.Seconds())
	}
	if days > 0 {
		c.DaysPerForecast.Observe(float64(days))
	}
}

// SetMountedWidgets updates the mounted widgets gauge.
func (c *Collector) SetMountedWidgets(n int) {
	c.MountedWidgets.Set(float64(n))
}
