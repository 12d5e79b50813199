package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clientdesk_http_requests_total",
			Help: "Total HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clientdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecordsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clientdesk_records_created_total",
			Help: "Created records by entity",
		},
		[]string{"entity"},
	)

	QuoteTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clientdesk_quote_transitions_total",
			Help: "Quote status transitions",
		},
		[]string{"status"},
	)
)
