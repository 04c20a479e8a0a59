// Package metrics holds the Prometheus instruments for optimizer runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "klaro"

// Metrics counts runs and times solver invocations.
type Metrics struct {
	// RunsTotal counts gateway runs. Labels: outcome.
	RunsTotal *prometheus.CounterVec
	// ErrorsTotal counts run errors. Labels: kind.
	ErrorsTotal *prometheus.CounterVec
	// SolverSeconds times the external solver. Labels: result (ok, failed, cancelled, not_found).
	SolverSeconds *prometheus.HistogramVec
	// RunSeconds times a whole run including persistence.
	RunSeconds prometheus.Histogram
	// InFlight is 1 while a run holds the lock.
	InFlight prometheus.Gauge

	registry *prometheus.Registry
}

// New registers the instruments on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		RunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Optimizer runs by outcome.",
		}, []string{"outcome"}),
		ErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "run_errors_total",
			Help:      "Run errors by kind.",
		}, []string{"kind"}),
		SolverSeconds: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "duration_seconds",
			Help:      "External solver wall time.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}, []string{"result"}),
		RunSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Whole-run wall time.",
			Buckets:   prometheus.DefBuckets,
		}),
		InFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "runs_in_flight",
			Help:      "Runs currently holding the run lock.",
		}),
		registry: reg,
	}
}

// ObserveRun records one finished run. kind is empty for clean runs.
func (m *Metrics) ObserveRun(outcome, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
	if kind != "" {
		m.ErrorsTotal.WithLabelValues(kind).Inc()
	}
	m.RunSeconds.Observe(d.Seconds())
}

// ObserveSolver records one solver invocation.
func (m *Metrics) ObserveSolver(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.SolverSeconds.WithLabelValues(result).Observe(d.Seconds())
}

// Acquired marks the run lock taken; call the returned func on release.
func (m *Metrics) Acquired() func() {
	if m == nil {
		return func() {}
	}
	m.InFlight.Inc()
	return m.InFlight.Dec
}

// Registry exposes the underlying registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
