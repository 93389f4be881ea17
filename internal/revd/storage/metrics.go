package storage

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains the metrics gathered by the store.
type Metrics struct {
	revisionsAllocatedTotal prometheus.Counter
	snapshotsCreatedTotal   prometheus.Counter
	archiveImportsTotal     *prometheus.CounterVec
	snapshotDurationSeconds prometheus.Histogram
}

// NewMetrics returns a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		revisionsAllocatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revd_revisions_allocated_total",
			Help: "Number of revision numbers handed out by the store.",
		}),
		snapshotsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "revd_snapshots_created_total",
			Help: "Number of full-copy snapshots created.",
		}),
		archiveImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "revd_archive_imports_total",
			Help: "Number of archive imports, partitioned by outcome.",
		}, []string{"status"}),
		snapshotDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "revd_snapshot_duration_seconds",
			Help:    "Time spent copying the current revision into a new one.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(descs chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(m, descs)
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(metrics chan<- prometheus.Metric) {
	m.revisionsAllocatedTotal.Collect(metrics)
	m.snapshotsCreatedTotal.Collect(metrics)
	m.archiveImportsTotal.Collect(metrics)
	m.snapshotDurationSeconds.Collect(metrics)
}
