package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the highlight service.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	runsStartedTotal    prometheus.Counter
	runsCompletedTotal  prometheus.Counter
	runsFailedTotal     prometheus.Counter
	runsCancelledTotal  prometheus.Counter
	engineFailuresTotal prometheus.Counter
	activeRuns          prometheus.Gauge
	errorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the highlight service.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_requests_total",
		Help: "Total number of HTTP requests received",
	})
	runsStartedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_runs_started_total",
		Help: "Total number of highlight runs started",
	})
	runsCompletedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_runs_completed_total",
		Help: "Total number of highlight runs that produced a final report",
	})
	runsFailedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_runs_failed_total",
		Help: "Total number of highlight runs that failed",
	})
	runsCancelledTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_runs_cancelled_total",
		Help: "Total number of highlight runs cancelled by the caller",
	})
	engineFailuresTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_engine_failures_total",
		Help: "Total number of engines that settled with an error",
	})
	activeRuns := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "shorttube_active_runs",
		Help: "Number of runs currently in flight",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shorttube_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		runsStartedTotal,
		runsCompletedTotal,
		runsFailedTotal,
		runsCancelledTotal,
		engineFailuresTotal,
		activeRuns,
		errorsTotal,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		runsStartedTotal:    runsStartedTotal,
		runsCompletedTotal:  runsCompletedTotal,
		runsFailedTotal:     runsFailedTotal,
		runsCancelledTotal:  runsCancelledTotal,
		engineFailuresTotal: engineFailuresTotal,
		activeRuns:          activeRuns,
		errorsTotal:         errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncRunsStarted increments the runs started counter.
func (m *Metrics) IncRunsStarted() {
	m.runsStartedTotal.Inc()
}

// IncRunsCompleted increments the runs completed counter.
func (m *Metrics) IncRunsCompleted() {
	m.runsCompletedTotal.Inc()
}

// IncRunsFailed increments the runs failed counter.
func (m *Metrics) IncRunsFailed() {
	m.runsFailedTotal.Inc()
}

// IncRunsCancelled increments the runs cancelled counter.
func (m *Metrics) IncRunsCancelled() {
	m.runsCancelledTotal.Inc()
}

// IncEngineFailures increments the engine failure counter.
func (m *Metrics) IncEngineFailures() {
	m.engineFailuresTotal.Inc()
}

// SetActiveRuns sets the active runs gauge.
func (m *Metrics) SetActiveRuns(n int) {
	m.activeRuns.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active runs).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
