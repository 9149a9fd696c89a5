package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "joina_http_requests_total",
			Help: "Total HTTP requests handled, by method, path and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "joina_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by method and path.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "joina_submissions_total",
			Help: "Application submissions, by outcome (accepted, rejected, failed).",
		},
		[]string{"outcome"},
	)
)
