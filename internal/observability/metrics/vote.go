package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Gatekeeper metrics track the vote submission pipeline.
var (
	// VoteSubmissionsTotal counts submissions by final outcome.
	// Outcomes: accepted, invalid, rate_limited, duplicate, honeypot, error.
	VoteSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vote_submissions_total",
			Help: "Total number of vote submissions by outcome",
		},
		[]string{"outcome"},
	)

	// VotePipelineDuration measures end-to-end pipeline duration per submission.
	VotePipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vote_pipeline_duration_seconds",
			Help:    "Time taken to run the full submission pipeline",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	// CacheFallbacksTotal counts durable-tier failures absorbed by the local tier.
	CacheFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_fallbacks_total",
			Help: "Total number of durable cache failures served by the local tier",
		},
		[]string{"op"},
	)

	// DedupConflictsTotal counts submissions rejected as duplicates.
	DedupConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_conflicts_total",
			Help: "Total number of submissions rejected as duplicate votes",
		},
	)

	// LedgerAppendDuration measures durable ledger append latency by result.
	LedgerAppendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ledger_append_duration_seconds",
			Help:    "Time taken to append vote records to the ledger",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"result"},
	)
)

// RecordSubmission records the final outcome of one submission and its
// pipeline duration.
func RecordSubmission(outcome string, duration time.Duration) {
	VoteSubmissionsTotal.WithLabelValues(outcome).Inc()
	VotePipelineDuration.Observe(duration.Seconds())
}

// RecordCacheFallback records one durable-tier failure absorbed by the
// fallback decorator. Op is "exists" or "set".
func RecordCacheFallback(op string) {
	CacheFallbacksTotal.WithLabelValues(op).Inc()
}

// RecordDedupConflict records one duplicate-vote rejection.
func RecordDedupConflict() {
	DedupConflictsTotal.Inc()
}

// RecordLedgerAppend records one ledger append attempt.
func RecordLedgerAppend(duration time.Duration, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	LedgerAppendDuration.WithLabelValues(result).Observe(duration.Seconds())
}
