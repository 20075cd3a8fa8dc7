package observability

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the wizard collectors.
type Metrics struct {
	StepChanges        *prometheus.CounterVec
	Fetches            *prometheus.CounterVec
	FetchDuration      *prometheus.HistogramVec
	ValidationFailures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_step_changes_total",
				Help: "Total number of step changes, by destination step",
			},
			[]string{"step"},
		),
		Fetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_fetches_total",
				Help: "Total number of settled remote fetches",
			},
			[]string{"resource", "phase"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "paddock_fetch_duration_seconds",
				Help:    "Duration of remote fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource"},
		),
		ValidationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "paddock_validation_failures_total",
				Help: "Total number of failed validation passes, by step",
			},
			[]string{"step"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.StepChanges, m.Fetches, m.FetchDuration, m.ValidationFailures)
	}
	return m
}

// Hooks records every event into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(e *domain.StepEvent) {
			m.StepChanges.WithLabelValues(strconv.Itoa(e.To)).Inc()
		},
		OnFetchEnd: func(_ context.Context, e *domain.FetchEvent) {
			m.Fetches.WithLabelValues(string(e.Resource), string(e.Phase)).Inc()
			m.FetchDuration.WithLabelValues(string(e.Resource)).Observe(e.Duration.Seconds())
		},
		OnValidation: func(e *domain.ValidationEvent) {
			if !e.Valid {
				m.ValidationFailures.WithLabelValues(strconv.Itoa(e.Step)).Inc()
			}
		},
	}
}

// LoggingHooks logs every event at debug level, fetch failures at warn.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepChange: func(e *domain.StepEvent) {
			logger.Debug("step_change", "from", e.From, "to", e.To)
		},
		OnFetchStart: func(ctx context.Context, e *domain.FetchEvent) {
			logger.DebugContext(ctx, "fetch_start", "resource", e.Resource)
		},
		OnFetchEnd: func(ctx context.Context, e *domain.FetchEvent) {
			if e.Phase == domain.PhaseRejected {
				logger.WarnContext(ctx, "fetch_end",
					"resource", e.Resource,
					"phase", e.Phase,
					"message", e.Message,
					"duration", e.Duration,
				)
				return
			}
			logger.DebugContext(ctx, "fetch_end",
				"resource", e.Resource,
				"phase", e.Phase,
				"count", e.Count,
				"duration", e.Duration,
			)
		},
		OnValidation: func(e *domain.ValidationEvent) {
			logger.Debug("validation", "step", e.Step, "valid", e.Valid)
		},
	}
}
