package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_batches_started_total",
		Help: "Total number of batches started",
	})

	BatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_batches_completed_total",
		Help: "Total number of batches that converged",
	})

	BatchesCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_batches_cancelled_total",
		Help: "Total number of batches cancelled",
	})

	PostOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "post_downloader_post_outcomes_total",
		Help: "Total number of finished posts by outcome",
	}, []string{"outcome"})

	SidecarsWritten = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_sidecars_written_total",
		Help: "Total number of tag sidecar files written",
	})

	FetchAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_fetch_attempts_total",
		Help: "Total number of fetch attempts",
	})

	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_fetch_failures_total",
		Help: "Total number of failed fetch attempts",
	})

	FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "post_downloader_fetch_duration_seconds",
		Help:    "Fetch duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	FetchBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "post_downloader_fetch_bytes_total",
		Help: "Total bytes fetched",
	})
)
