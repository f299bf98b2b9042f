package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Partnership API call latency (seconds)
	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "partnership_api_request_duration_seconds",
			Help:    "Partnership API request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		},
		[]string{"method", "endpoint", "outcome"},
	)

	// Dashboard builds by final state
	DashboardBuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_builds_total",
			Help: "Total number of dashboard aggregations",
		},
		[]string{"time_filter", "result"}, // result: ok, fetch_error
	)

	// Boundary data loads
	BoundaryLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boundary_data_loads_total",
			Help: "Total number of boundary data loads by source",
		},
		[]string{"source"}, // source: cache, remote, error
	)

	// Scheduled job runs
	CronJobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cron_job_runs_total",
			Help: "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

// RecordUpstreamRequest records one partnership API call.
func RecordUpstreamRequest(method, endpoint, outcome string, duration time.Duration) {
	UpstreamRequestDuration.WithLabelValues(method, endpoint, outcome).Observe(duration.Seconds())
}

// IncrementDashboardBuild counts a dashboard aggregation.
func IncrementDashboardBuild(timeFilter, result string) {
	DashboardBuilds.WithLabelValues(timeFilter, result).Inc()
}

// IncrementBoundaryLoad counts a boundary data load.
func IncrementBoundaryLoad(source string) {
	BoundaryLoads.WithLabelValues(source).Inc()
}

// IncrementCronJob counts a scheduled job run.
func IncrementCronJob(job, status string) {
	CronJobRuns.WithLabelValues(job, status).Inc()
}
