// Package metrics holds the Prometheus collectors shared by the adapters and
// the application layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ytsentiment"

// YouTube API Metrics
var (
	// YouTubePagesTotal tracks successful commentThreads.list pages
	YouTubePagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "youtube",
			Name:      "pages_total",
			Help:      "Total comment thread pages fetched",
		},
	)

	// YouTubeCommentsFetched tracks comments returned to callers after truncation
	YouTubeCommentsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "youtube",
			Name:      "comments_fetched_total",
			Help:      "Total comments fetched, replies included",
		},
	)

	// YouTubeErrorsTotal tracks failed page requests by error kind
	YouTubeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "youtube",
			Name:      "errors_total",
			Help:      "Total failed comment thread requests by kind",
		},
		[]string{"kind"},
	)
)

// Analysis Metrics
var (
	// AnalysisDuration tracks pipeline stage latency in seconds
	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "stage_duration_seconds",
			Help:      "Analysis pipeline stage duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage"},
	)

	// CommentsTagged tracks scored comments by sentiment label
	CommentsTagged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "comments_tagged_total",
			Help:      "Total comments tagged by sentiment label",
		},
		[]string{"label"},
	)

	// SessionsActive tracks analysis sessions currently held in memory
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "sessions_active",
			Help:      "Number of analysis sessions currently held",
		},
	)

	// SessionsExpired tracks sessions removed by the janitor
	SessionsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "sessions_expired_total",
			Help:      "Total idle sessions removed",
		},
	)
)
