// Package metrics provides Prometheus metrics for the clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CandidateQueriesTotal tracks candidate searches by outcome
	CandidateQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "recruiting",
			Name:      "candidate_queries_total",
			Help:      "Total number of candidate match queries by status",
		},
		[]string{"status", "needs_source"},
	)

	// TrendingQueriesTotal tracks trending list requests by cache outcome
	TrendingQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "recruiting",
			Name:      "trending_queries_total",
			Help:      "Total number of trending queries by status and cache result",
		},
		[]string{"status", "cache"},
	)

	// ScoringDuration tracks how long a fetch-score-rank pass takes
	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "recruiting",
			Name:      "scoring_duration_seconds",
			Help:      "Duration of candidate and trending ranking passes in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"kind"},
	)

	// CandidatesScored tracks how many raw candidates each pass scored
	CandidatesScored = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "recruiting",
			Name:      "candidates_scored",
			Help:      "Number of candidates scored per ranking pass",
			Buckets:   []float64{0, 5, 10, 20, 50, 100},
		},
		[]string{"kind"},
	)

	// MetricParseFailures tracks metric rows whose value carried no number
	MetricParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "measurement",
			Name:      "parse_failures_total",
			Help:      "Total number of metric values that could not be parsed",
		},
		[]string{"kind"},
	)

	// PipelineMutationsTotal tracks pipeline writes by operation and outcome
	PipelineMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "pipeline",
			Name:      "mutations_total",
			Help:      "Total number of pipeline mutations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// LegacyWriteFailures tracks failed writes to the legacy recruits table
	LegacyWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "pipeline",
			Name:      "legacy_write_failures_total",
			Help:      "Total number of legacy store writes that failed",
		},
		[]string{"operation"},
	)

	// PipelineReadSource tracks which store served pipeline reads
	PipelineReadSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "pipeline",
			Name:      "reads_total",
			Help:      "Total number of pipeline reads by serving store",
		},
		[]string{"source"},
	)

	// RemovalInconsistencies tracks removals that succeeded in only one store
	RemovalInconsistencies = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "pipeline",
			Name:      "removal_inconsistencies_total",
			Help:      "Total number of pipeline removals that left the stores out of sync",
		},
	)

	// CacheOperations tracks result cache lookups
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total number of result cache operations by result",
		},
		[]string{"operation", "result"},
	)

	// EventsPublished tracks pipeline events sent to Kafka
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Total number of pipeline events published by type and status",
		},
		[]string{"event_type", "status"},
	)
)
