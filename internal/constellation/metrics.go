package constellation

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Skip reasons recorded when a source is left out of a build.
const (
	SkipNotFound = "not_found"
	SkipCorrupt  = "corrupt"
	SkipTimeout  = "timeout"
	SkipError    = "error"
	SkipList     = "list_failed"
)

// Metrics holds Prometheus metrics for view aggregation.
type Metrics struct {
	BuildsTotal       prometheus.Counter
	BuildDuration     prometheus.Histogram
	GardensSkipped    *prometheus.CounterVec
	GardensAggregated prometheus.Gauge
	FeedSize          prometheus.Gauge
	LettersAggregated prometheus.Gauge
}

// NewMetrics returns the process-wide aggregation metrics, registering them
// on first use.
//
// Metrics:
//   - constellation_builds_total - Count of view builds
//   - constellation_build_duration_seconds - Histogram of build times
//   - constellation_gardens_skipped_total{reason} - Gardens left out of a build
//   - constellation_gardens - Gardens in the latest build
//   - constellation_feed_size - Entries in the latest feed
//   - constellation_letters - Letters in the latest build
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			BuildsTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "constellation_builds_total",
					Help: "Total number of constellation view builds",
				},
			),

			BuildDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "constellation_build_duration_seconds",
					Help:    "Duration of constellation view builds in seconds",
					Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
				},
			),

			GardensSkipped: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "constellation_gardens_skipped_total",
					Help: "Total number of gardens left out of a build",
				},
				[]string{"reason"}, // "not_found", "corrupt", "timeout", "error", "list_failed"
			),

			GardensAggregated: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "constellation_gardens",
					Help: "Number of gardens in the most recent build",
				},
			),

			FeedSize: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "constellation_feed_size",
					Help: "Number of activities in the most recent feed",
				},
			),

			LettersAggregated: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "constellation_letters",
					Help: "Number of letters in the most recent build",
				},
			),
		}
	})

	return globalMetrics
}

// RecordSkip records a garden left out of a build.
func (m *Metrics) RecordSkip(reason string) {
	m.GardensSkipped.WithLabelValues(reason).Inc()
}

// RecordBuild records a completed build.
func (m *Metrics) RecordBuild(v *View, durationSeconds float64) {
	m.BuildsTotal.Inc()
	m.BuildDuration.Observe(durationSeconds)
	m.GardensAggregated.Set(float64(len(v.GardenSummaries)))
	m.FeedSize.Set(float64(len(v.RecentActivity)))
	m.LettersAggregated.Set(float64(v.Totals.Letters))
}
