package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Import metrics
var (
	// RowsTotal counts source rows by outcome (inserted, skipped, rejected, failed).
	RowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "links_rows_total",
			Help: "Total number of link rows processed, by outcome.",
		},
		[]string{"outcome"},
	)

	// WriteDuration observes the latency of each database write (one row or one batch).
	WriteDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "links_write_duration_seconds",
			Help:    "Duration of link writes to the database.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		},
		[]string{"driver"},
	)

	// WriteRetriesTotal counts writes retried after a transient database error.
	WriteRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "links_write_retries_total",
			Help: "Total number of link writes retried after a transient error.",
		},
		[]string{"driver"},
	)

	// ImportRunning is 1 while an import is in progress.
	ImportRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "links_import_running",
			Help: "Whether a links import is currently running.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RowsTotal,
		WriteDuration,
		WriteRetriesTotal,
		ImportRunning,
	)
}
