package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gallery_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	httpErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_http_errors_total",
		Help: "Error responses by route and error code.",
	}, []string{"method", "route", "code"})

	moderationTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gallery_moderation_transitions_total",
		Help: "Submission status changes by source and target status.",
	}, []string{"from", "to"})
)

// Metrics records HTTP request metrics. A nil *Metrics records nothing.
type Metrics struct{}

// NewMetrics returns the process metrics handle.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordRequest counts a finished request and observes its latency.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError counts an error response by its domain code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	httpErrorsTotal.WithLabelValues(method, route, code).Inc()
}

// RecordTransition counts one moderation status change.
func RecordTransition(from, to string) {
	moderationTransitionsTotal.WithLabelValues(from, to).Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
