// Package metrics defines Prometheus metrics for dietinsights.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dietinsights_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietinsights_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietinsights_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	IngestRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietinsights_ingest_runs_total",
			Help: "Ingestion runs by outcome",
		},
		[]string{"outcome"},
	)

	IngestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dietinsights_ingest_duration_seconds",
			Help:    "Ingestion run duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	IngestRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dietinsights_ingest_rows_total",
			Help: "Normalized rows processed by ingestion",
		},
	)

	CoercionWarnings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietinsights_coercion_warnings_total",
			Help: "Cells that failed numeric coercion, by canonical field",
		},
		[]string{"field"},
	)

	RecipesWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dietinsights_recipes_written_total",
			Help: "Recipe records persisted",
		},
	)

	StatsCacheRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dietinsights_stats_cache_requests_total",
			Help: "Stats cache lookups by result",
		},
		[]string{"result"},
	)

	IngestQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dietinsights_ingest_queue_depth",
			Help: "Current ingestion queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dietinsights_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		IngestRuns, IngestDuration, IngestRows, CoercionWarnings, RecipesWritten,
		StatsCacheRequests, IngestQueueDepth, WSConnections,
	)
}
