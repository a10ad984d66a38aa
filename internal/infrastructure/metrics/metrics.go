// Package metrics holds the Prometheus collectors of the API and worker.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics contains Prometheus metrics for HTTP traffic and model file side effects
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	sideEffectFailures  *prometheus.CounterVec
	modelUploadsTotal   *prometheus.CounterVec
	orphanModelFiles    prometheus.Gauge
	reconcileRunsTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on registry
func NewMetrics(registry *prometheus.Registry) (*Metrics, error) {
	m := &Metrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// NewDefaultMetrics dùng registry riêng kèm Go runtime + process collectors
func NewDefaultMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetrics(registry)
}

func (m *Metrics) initMetrics() {
	m.httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aksara_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "route", "status"},
	)

	m.httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "aksara_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.sideEffectFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aksara_model_side_effect_failures_total",
			Help: "Model file operations that failed after the database operation succeeded",
		},
		[]string{"action"}, // rename, delete, rollback, prune
	)

	m.modelUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aksara_model_uploads_total",
			Help: "Total number of model file uploads",
		},
		[]string{"status"}, // success, error
	)

	m.orphanModelFiles = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "aksara_model_orphan_files",
		Help: "Model files without a matching entry at the last reconciliation",
	})

	m.reconcileRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aksara_model_reconcile_runs_total",
			Help: "Total number of reconciliation passes",
		},
		[]string{"status"},
	)
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.httpRequestsTotal.Describe(ch)
	m.httpRequestDuration.Describe(ch)
	m.sideEffectFailures.Describe(ch)
	m.modelUploadsTotal.Describe(ch)
	m.orphanModelFiles.Describe(ch)
	m.reconcileRunsTotal.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.httpRequestsTotal.Collect(ch)
	m.httpRequestDuration.Collect(ch)
	m.sideEffectFailures.Collect(ch)
	m.modelUploadsTotal.Collect(ch)
	m.orphanModelFiles.Collect(ch)
	m.reconcileRunsTotal.Collect(ch)
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, seconds float64) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) RecordSideEffectFailure(action string) {
	m.sideEffectFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) RecordModelUpload(ok bool) {
	status := "success"
	if !ok {
		status = "error"
	}
	m.modelUploadsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordReconcile(orphans int, err error) {
	if err != nil {
		m.reconcileRunsTotal.WithLabelValues("error").Inc()
		return
	}
	m.reconcileRunsTotal.WithLabelValues("success").Inc()
	m.orphanModelFiles.Set(float64(orphans))
}
