// Package metrics carries the portal's Prometheus instrumentation: inbound
// page requests and outbound calls to the enrollment API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Service owns the registry and the portal's collectors.
type Service struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	upstreamTotal    *prometheus.CounterVec
}

// New builds a Service with a private registry.
func New() *Service {
	registry := prometheus.NewRegistry()

	s := &Service{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_http_request_duration_seconds",
			Help:    "Latency of portal page and API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_http_requests_total",
			Help: "Count of portal page and API requests.",
		}, []string{"method", "path", "status"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "portal_upstream_request_duration_seconds",
			Help:    "Latency of calls to the enrollment API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "group", "status"}),
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_upstream_requests_total",
			Help: "Count of calls to the enrollment API. Status 0 means the upstream was unreachable.",
		}, []string{"method", "group", "status"}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.requestDuration,
		s.requestTotal,
		s.upstreamDuration,
		s.upstreamTotal,
	)
	s.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return s
}

// Handler serves the /metrics endpoint.
func (s *Service) Handler() http.Handler {
	return s.handler
}

// ObserveUpstream implements upstream.Observer.
func (s *Service) ObserveUpstream(method, group string, status int, duration time.Duration) {
	labels := []string{method, group, strconv.Itoa(status)}
	s.upstreamDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.upstreamTotal.WithLabelValues(labels...).Inc()
}

// GinMiddleware captures inbound request metrics keyed by route template.
func (s *Service) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		labels := []string{c.Request.Method, path, strconv.Itoa(c.Writer.Status())}
		s.requestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		s.requestTotal.WithLabelValues(labels...).Inc()
	}
}
