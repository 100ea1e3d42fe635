package notify

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for live updates.
type Metrics struct {
	Published     prometheus.Counter
	PublishErrors prometheus.Counter
	FileEvents    prometheus.Counter
	WatchErrors   prometheus.Counter
}

// NewMetrics returns the process-wide notify metrics.
//
// Metrics:
//   - constellation_updates_published_total - Snapshots sent on NATS
//   - constellation_update_publish_errors_total - Failed publishes
//   - constellation_watch_events_total - Relevant file events seen
//   - constellation_watch_errors_total - Errors reported by the watcher
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			Published: promauto.NewCounter(prometheus.CounterOpts{
				Name: "constellation_updates_published_total",
				Help: "Total number of view snapshots published",
			}),
			PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "constellation_update_publish_errors_total",
				Help: "Total number of failed snapshot publishes",
			}),
			FileEvents: promauto.NewCounter(prometheus.CounterOpts{
				Name: "constellation_watch_events_total",
				Help: "Total number of garden or letter file events observed",
			}),
			WatchErrors: promauto.NewCounter(prometheus.CounterOpts{
				Name: "constellation_watch_errors_total",
				Help: "Total number of file watcher errors",
			}),
		}
	})
	return globalMetrics
}
