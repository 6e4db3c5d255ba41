package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

var initOnce sync.Once

// Cleanup run metrics
var (
	// SnapshotsDiscovered records how many snapshots the last run found
	SnapshotsDiscovered prometheus.Gauge

	// SnapshotsDeletedTotal counts successfully deleted snapshots
	SnapshotsDeletedTotal prometheus.Counter

	// DeleteErrorsTotal counts failed delete attempts
	DeleteErrorsTotal prometheus.Counter

	// RunDuration tracks how long cleanup runs take
	RunDuration prometheus.Histogram

	// LastRunTimestamp records the Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge
)

// Init initializes and registers all metrics
// Safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		SnapshotsDiscovered = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snapsweep_snapshots_discovered",
			Help: "Number of snapshots discovered by the last cleanup run.",
		})
		SnapshotsDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapsweep_snapshots_deleted_total",
			Help: "Total number of snapshots deleted.",
		})
		DeleteErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "snapsweep_delete_errors_total",
			Help: "Total number of failed snapshot delete attempts.",
		})
		RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapsweep_run_duration_seconds",
			Help:    "Duration of cleanup runs in seconds.",
			Buckets: prometheus.DefBuckets,
		})
		LastRunTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "snapsweep_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last cleanup run.",
		})

		prometheus.MustRegister(
			SnapshotsDiscovered,
			SnapshotsDeletedTotal,
			DeleteErrorsTotal,
			RunDuration,
			LastRunTimestamp,
		)
	})
}

// Push sends the registered metrics to a Pushgateway. snapsweep is a
// one-shot batch job, so push is the delivery model rather than a scrape
// endpoint.
func Push(url, job string) error {
	return push.New(url, job).Gatherer(prometheus.DefaultGatherer).Push()
}
