// Package metrics exposes Prometheus collectors for schema extraction and
// quality profiling.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "datalens"

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeError    = "error"
	OutcomeScored   = "scored"
	OutcomeFallback = "fallback"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	Extractions    *prometheus.CounterVec   // dialect, outcome
	ProfileRuns    *prometheus.CounterVec   // dialect, outcome
	ProfiledTables *prometheus.CounterVec   // dialect, outcome (scored|fallback)
	Duration       *prometheus.HistogramVec // operation, dialect
}

// New registers the collectors with reg. Use prometheus.NewRegistry in tests
// to avoid duplicate registration panics.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Schema extractions by dialect and outcome",
		}, []string{"dialect", "outcome"}),
		ProfileRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_runs_total",
			Help:      "Quality profiling runs by dialect and outcome",
		}, []string{"dialect", "outcome"}),
		ProfiledTables: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiled_tables_total",
			Help:      "Tables profiled, split into scored tables and sample fallbacks",
		}, []string{"dialect", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of extract and profile operations",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation", "dialect"}),
	}
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveExtraction records one Extract call.
func (m *Metrics) ObserveExtraction(dialect string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(dialect, outcome(err)).Inc()
	m.Duration.WithLabelValues("extract", dialect).Observe(elapsed.Seconds())
}

// ObserveProfile records one Profile call.
func (m *Metrics) ObserveProfile(dialect string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ProfileRuns.WithLabelValues(dialect, outcome(err)).Inc()
	m.Duration.WithLabelValues("profile", dialect).Observe(elapsed.Seconds())
}

// TableProfiled records a single table result.
func (m *Metrics) TableProfiled(dialect string, fallback bool) {
	if m == nil {
		return
	}
	o := OutcomeScored
	if fallback {
		o = OutcomeFallback
	}
	m.ProfiledTables.WithLabelValues(dialect, o).Inc()
}
