// Package metrics defines Prometheus metrics for degrees.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "degrees_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degrees_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degrees_errors_total",
			Help: "Total API errors by code",
		},
		[]string{"code"},
	)

	CrawlsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degrees_crawls_total",
			Help: "Total crawls by outcome",
		},
		[]string{"outcome"},
	)

	CrawlDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "degrees_crawl_duration_seconds",
			Help:    "Crawl duration in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)

	NodesDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "degrees_nodes_discovered_total",
			Help: "Nodes added across all crawls",
		},
	)

	EdgesDiscovered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "degrees_edges_discovered_total",
			Help: "Edges added across all crawls",
		},
	)

	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "degrees_provider_requests_total",
			Help: "Association provider requests",
		},
		[]string{"provider", "op", "outcome"},
	)

	ResolutionWarnings = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "degrees_resolution_warnings_total",
			Help: "References skipped because they could not be resolved",
		},
	)

	StreamConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "degrees_stream_connections",
			Help: "Active crawl stream WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		CrawlsTotal, CrawlDuration,
		NodesDiscovered, EdgesDiscovered,
		ProviderRequests, ResolutionWarnings,
		StreamConnections,
	)
}

// Provider request and crawl outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
	OutcomeCacheHit    = "cache_hit"
	OutcomeCancelled   = "cancelled"
)
