// Package metrics declares the Prometheus collectors of the upload server.
// All collectors register on the default registry, served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sc_http_requests_total",
			Help: "Total HTTP requests handled by the upload server.",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sc_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Uploads counts POST /images/ outcomes: accepted, rejected, error.
	Uploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sc_uploads_total",
			Help: "Image uploads by result.",
		},
		[]string{"result"},
	)

	// Forwards counts inference forwarding outcomes: done, failed, queue_full, interrupted.
	Forwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sc_forward_total",
			Help: "Inference forwarding attempts by result.",
		},
		[]string{"result"},
	)

	// AuthCache counts basic-auth cache lookups: hit, miss.
	AuthCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sc_auth_cache_total",
			Help: "Basic-auth verification cache lookups by result.",
		},
		[]string{"result"},
	)
)
