// Package bindmetrics exports model binding outcomes as Prometheus metrics.
package bindmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dmitrymomot/formbind/pkg/modelbind"
)

const namespace = "formbind"

// Metrics implements modelbind.Observer.
// Tracks bind counts by outcome, recorded field errors and bind durations.
type Metrics struct {
	Binds        *prometheus.CounterVec
	FieldErrors  *prometheus.CounterVec
	FatalErrors  *prometheus.CounterVec
	BindDuration *prometheus.HistogramVec
}

// New creates Metrics registered with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Binds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "binds_total",
			Help:      "Total number of top-level binds by model and outcome",
		}, []string{"model", "outcome"}),
		FieldErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_errors_total",
			Help:      "Total number of field errors recorded while binding",
		}, []string{"model"}),
		FatalErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fatal_errors_total",
			Help:      "Total number of binds aborted by a construction failure or cancellation",
		}, []string{"model"}),
		BindDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "bind_duration_seconds",
			Help:      "Duration of top-level binds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1},
		}, []string{"model"}),
	}
}

// ObserveBind records e.
func (m *Metrics) ObserveBind(_ context.Context, e modelbind.BindEvent) {
	outcome := e.Outcome.String()
	if e.Err != nil {
		outcome = "error"
		m.FatalErrors.WithLabelValues(e.Model).Inc()
	}
	m.Binds.WithLabelValues(e.Model, outcome).Inc()
	if e.Errors > 0 {
		m.FieldErrors.WithLabelValues(e.Model).Add(float64(e.Errors))
	}
	m.BindDuration.WithLabelValues(e.Model).Observe(e.Duration.Seconds())
}

var _ modelbind.Observer = (*Metrics)(nil)
