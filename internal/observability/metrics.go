package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "org_admin"

// Metrics owns the prometheus collectors for the service. A nil *Metrics is
// a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorTotal      *prometheus.CounterVec
	eventTotal      *prometheus.CounterVec
	geoCacheTotal   *prometheus.CounterVec
}

// NewMetrics registers collectors on reg. A nil reg gets a fresh registry
// carrying the Go and process collectors.
func NewMetrics(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests broken down by route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets: []float64{
				0.001, 0.002, 0.005,
				0.01, 0.02, 0.05,
				0.1, 0.2, 0.5,
				1, 2, 5, 10,
			},
		}, []string{"method", "route"}),
		errorTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of failed requests by error code.",
		}, []string{"method", "route", "code"}),
		eventTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "events_total",
			Help:      "Total number of audit events handled by type.",
		}, []string{"type"}),
		geoCacheTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geo",
			Name:      "cache_lookups_total",
			Help:      "Geography cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errorTotal.WithLabelValues(method, route, code).Inc()
}

// RecordEvent counts a handled audit event.
func (m *Metrics) RecordEvent(eventType string) {
	if m == nil {
		return
	}
	m.eventTotal.WithLabelValues(eventType).Inc()
}

// RecordCacheLookup counts a geography cache lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.geoCacheTotal.WithLabelValues(result).Inc()
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
