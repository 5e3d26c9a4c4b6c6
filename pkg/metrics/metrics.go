// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the capture pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors for the server. All collectors are registered
// on a private registry so tests can construct independent instances.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	TokensCreated   prometheus.Counter
	TokensDeleted   prometheus.Counter
	CapturesTotal   prometheus.Counter
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hookcatch_http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hookcatch_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TokensCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookcatch_tokens_created_total",
			Help: "Total number of tokens created.",
		}),
		TokensDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookcatch_tokens_deleted_total",
			Help: "Total number of tokens deleted.",
		}),
		CapturesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "hookcatch_captures_total",
			Help: "Total number of webhook requests captured.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.TokensCreated,
		m.TokensDeleted,
		m.CapturesTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns an http.Handler serving the Prometheus exposition format
// for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
