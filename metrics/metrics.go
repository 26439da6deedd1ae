package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	registry *prometheus.Registry

	RequestCounter           *prometheus.CounterVec
	RequestDurationHistogram *prometheus.HistogramVec
	DomainEvents             *prometheus.CounterVec
}

// New registers the HTTP and domain collectors on a private registry.
func New(serviceName string) *Metrics {
	labels := prometheus.Labels{"service": serviceName}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		RequestDurationHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests in seconds",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"method", "path", "status"}),
		DomainEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "clinic_events_total",
			Help:        "Domain events by kind and outcome",
			ConstLabels: labels,
		}, []string{"event", "outcome"}),
	}
	m.registry.MustRegister(
		m.RequestCounter,
		m.RequestDurationHistogram,
		m.DomainEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Event counts a domain event. A nil receiver is a no-op so services can run without metrics.
func (m *Metrics) Event(event, outcome string) {
	if m == nil {
		return
	}
	m.DomainEvents.WithLabelValues(event, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
