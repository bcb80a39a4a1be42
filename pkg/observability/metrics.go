package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Session metrics
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Total number of browser sessions started",
		},
		[]string{"adapter"},
	)

	SessionsEnded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Total number of browser sessions ended",
		},
		[]string{"adapter"},
	)

	// Operation metrics
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "operation",
			Name:      "total",
			Help:      "Total number of browser operations dispatched",
		},
		[]string{"adapter", "operation", "status"},
	)

	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "webpilot",
			Subsystem: "operation",
			Name:      "duration_seconds",
			Help:      "Browser operation latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"adapter", "operation"},
	)

	// RPC daemon metrics
	DaemonLaunches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "daemon",
			Name:      "launches_total",
			Help:      "Total number of browser daemon launch attempts",
		},
		[]string{"result"}, // "already_running", "launched", "failed"
	)

	DaemonHealthProbes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "daemon",
			Name:      "health_probes_total",
			Help:      "Total number of daemon health probes",
		},
		[]string{"result"}, // "healthy", "unhealthy"
	)

	// Search metrics
	SearchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "webpilot",
			Subsystem: "search",
			Name:      "requests_total",
			Help:      "Total number of search requests",
		},
		[]string{"provider", "status"},
	)

	SearchResultCount = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "webpilot",
			Subsystem: "search",
			Name:      "results_returned",
			Help:      "Number of results returned per search request",
			Buckets:   prometheus.LinearBuckets(0, 2, 11), // 0 to 20
		},
		[]string{"provider"},
	)
)
