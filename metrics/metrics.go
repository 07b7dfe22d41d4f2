// Package metrics provides Prometheus metrics for rsscat.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedFetchTotal counts feed fetches by outcome.
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsscat",
			Name:      "feed_fetch_total",
			Help:      "Total number of feed fetches",
		},
		[]string{"status"},
	)

	// ArticlesInsertedTotal counts new unclassified article rows.
	ArticlesInsertedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rsscat",
			Name:      "articles_inserted_total",
			Help:      "Total number of articles inserted by ingestion",
		},
	)

	// TasksEnqueuedTotal counts classification tasks handed to the queue.
	TasksEnqueuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rsscat",
			Name:      "tasks_enqueued_total",
			Help:      "Total number of classification tasks enqueued",
		},
	)

	// TasksProcessedTotal counts finished classification tasks by status.
	TasksProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsscat",
			Name:      "tasks_processed_total",
			Help:      "Total number of classification tasks processed",
		},
		[]string{"status"},
	)

	// CategoryAssignedTotal counts assigned categories by label.
	CategoryAssignedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rsscat",
			Name:      "category_assigned_total",
			Help:      "Total number of categories assigned",
		},
		[]string{"category"},
	)

	// IngestionDuration measures one full ingestion run.
	IngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rsscat",
			Name:      "ingestion_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// RecordFeedFetch records one feed fetch.
func RecordFeedFetch(ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	FeedFetchTotal.WithLabelValues(status).Inc()
}

// RecordTask records one processed task and, on success, its category.
func RecordTask(status, category string) {
	TasksProcessedTotal.WithLabelValues(status).Inc()
	if category != "" {
		CategoryAssignedTotal.WithLabelValues(category).Inc()
	}
}
