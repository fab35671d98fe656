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

// Metrics holds the service's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	reports         *prometheus.CounterVec
	classifications *prometheus.CounterVec
	scores          prometheus.Histogram
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "wellness",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		reports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "reports_generated_total",
			Help:      "Generated clinician documents by kind and format.",
		}, []string{"kind", "format"}),
		classifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wellness",
			Name:      "migraine_classifications_total",
			Help:      "Computed doctor summaries by headache-pattern classification.",
		}, []string{"type"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wellness",
			Name:      "transformation_score",
			Help:      "Distribution of computed transformation scores.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.reports,
		m.classifications,
		m.scores,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency per matched route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ReportGenerated counts one generated document
func (m *Metrics) ReportGenerated(kind, format string) {
	m.reports.WithLabelValues(kind, format).Inc()
}

// Classified counts one doctor-summary classification
func (m *Metrics) Classified(classification string) {
	m.classifications.WithLabelValues(classification).Inc()
}

// ScoreComputed records one transformation score
func (m *Metrics) ScoreComputed(score int) {
	m.scores.Observe(float64(score))
}
