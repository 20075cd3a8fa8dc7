package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/form"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct{}

func (stubSource) FetchDriversList(ctx context.Context) ([]domain.Driver, error) {
	return []domain.Driver{{DriverID: "alonso"}}, nil
}

func (stubSource) FetchDriverStandingsList(ctx context.Context) ([]domain.DriverStanding, error) {
	return nil, nil
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return float64(m.GetHistogram().GetSampleCount())
		}
	}
	return 0
}

func TestMetrics_RecordWizardActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := observability.NewMetrics(reg)
	hooks := metrics.Hooks()

	store := form.New(stubSource{}, form.WithLifecycleHooks(hooks))
	nav := navigator.New(store, navigator.WithLifecycleHooks(hooks))

	// Blank basic info fails validation.
	_, ok := nav.Next()
	require.False(t, ok)

	name, email := "Ada", "ada@example.com"
	store.SetBasicInfo(domain.BasicInfo{Name: &name, Email: &email})
	_, ok = nav.Next()
	require.True(t, ok)
	store.FetchDrivers(context.Background())

	assert.Equal(t, 1.0, counterValue(t, reg, "paddock_validation_failures_total", map[string]string{"step": "1"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "paddock_step_changes_total", map[string]string{"step": "2"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "paddock_fetches_total", map[string]string{"resource": "drivers", "phase": "fulfilled"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "paddock_fetch_duration_seconds", map[string]string{"resource": "drivers"}))
}

func TestNewMetrics_NilRegisterer(t *testing.T) {
	m := observability.NewMetrics(nil)
	assert.NotPanics(t, func() {
		m.Hooks().OnStepChange(&domain.StepEvent{To: 2})
	})
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, slog.LevelDebug, false)
	hooks := observability.LoggingHooks(logger)

	hooks.OnFetchEnd(context.Background(), &domain.FetchEvent{
		Resource: domain.ResourceStandings,
		Phase:    domain.PhaseRejected,
		Message:  "boom",
		Duration: time.Millisecond,
	})
	hooks.OnStepChange(&domain.StepEvent{From: 1, To: 2})

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "resource=standings")
	assert.Contains(t, out, "msg=step_change")
}
