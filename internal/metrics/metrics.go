// Package metrics exposes Prometheus instrumentation for the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry,
// so tests can create instances without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	pipelineStage       *prometheus.HistogramVec
	jobsTotal           *prometheus.CounterVec
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hackrx_http_requests_total",
				Help: "Total HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hackrx_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		pipelineStage: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hackrx_pipeline_stage_duration_seconds",
				Help:    "Pipeline stage latency by stage name.",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		jobsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hackrx_jobs_total",
				Help: "Processed jobs by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.pipelineStage,
		m.jobsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method, status string, elapsed time.Duration) {
	m.httpRequestsTotal.WithLabelValues(route, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// ObserveStage records one pipeline stage execution.
func (m *Metrics) ObserveStage(stage string, elapsed time.Duration) {
	m.pipelineStage.WithLabelValues(stage).Observe(elapsed.Seconds())
}

// ObserveJob records one finished job.
func (m *Metrics) ObserveJob(outcome string) {
	m.jobsTotal.WithLabelValues(outcome).Inc()
}
