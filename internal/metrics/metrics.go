// Package metrics provides Prometheus instrumentation for the travel circle
// service: recommendation latency and quality, appended records per
// sequence, and actions rejected by validation or rate limiting.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecommendationsTotal counts ranking requests served.
	RecommendationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "circle_recommendations_total",
		Help: "Total number of companion rankings computed",
	})

	// RecommendDuration records the time to list and rank candidates.
	RecommendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "circle_recommend_duration_seconds",
		Help:    "Time to list and rank companion candidates",
		Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
	})

	// TopMatchPercentage records the best match percentage of each ranking.
	TopMatchPercentage = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "circle_top_match_percentage",
		Help:    "Match percentage of the best ranked candidate",
		Buckets: []float64{10, 25, 40, 50, 60, 70, 80, 90, 99},
	})

	// RecordsAppended counts records appended, labeled by sequence key.
	RecordsAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_records_appended_total",
		Help: "Total number of records appended to persisted sequences",
	}, []string{"key"}) // key = "match_requests", "join_requests", ...

	// SequenceLength tracks the length of each sequence after the last append.
	SequenceLength = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circle_sequence_length",
		Help: "Number of records in a persisted sequence after the last append",
	}, []string{"key"})

	// ActionsRejected counts user actions refused before anything was
	// written, labeled by reason.
	ActionsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "circle_actions_rejected_total",
		Help: "Total number of user actions rejected",
	}, []string{"reason"}) // reason = "incomplete_members", "group_full", "rate_limited", ...
)

func init() {
	prometheus.MustRegister(
		RecommendationsTotal,
		RecommendDuration,
		TopMatchPercentage,
		RecordsAppended,
		SequenceLength,
		ActionsRejected,
	)
}

// ObserveAppend records a successful append to key that left length records.
func ObserveAppend(key string, length int) {
	RecordsAppended.WithLabelValues(key).Inc()
	SequenceLength.WithLabelValues(key).Set(float64(length))
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
