package paddock

import (
	"context"
	"log/slog"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/form"
	"github.com/aretw0/paddock/pkg/navigator"
	"github.com/aretw0/paddock/pkg/ports"
	"github.com/aretw0/paddock/pkg/steps"
)

// Wizard wires one session's form store to its navigator and step views.
type Wizard struct {
	Store           *form.Store
	Nav             *navigator.Navigator
	BasicInfo       *steps.BasicInfo
	DriverSelection *steps.DriverSelection
	Summary         *steps.Summary

	guard  *steps.Guard
	logger *slog.Logger
}

type options struct {
	state  *domain.FormState
	guard  *steps.Guard
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures a Wizard.
type Option func(*options)

// WithState resumes from a saved form state.
func WithState(state domain.FormState) Option {
	return func(o *options) {
		o.state = &state
	}
}

// WithGuard shares a fetch guard that outlives the Wizard, e.g. across HTTP requests.
func WithGuard(guard *steps.Guard) Option {
	return func(o *options) {
		o.guard = guard
	}
}

// WithLifecycleHooks registers observability hooks on the store and the navigator.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithLogger sets a structured logger for every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds a Wizard reading remote lists from source.
func New(source ports.DriverSource, opts ...Option) *Wizard {
	o := &options{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	if o.guard == nil {
		o.guard = steps.NewGuard()
	}

	storeOpts := []form.Option{
		form.WithLogger(o.logger),
		form.WithLifecycleHooks(o.hooks),
	}
	if o.state != nil {
		storeOpts = append(storeOpts, form.WithState(*o.state))
	}
	store := form.New(source, storeOpts...)

	return &Wizard{
		Store:           store,
		Nav:             navigator.New(store, navigator.WithLogger(o.logger), navigator.WithLifecycleHooks(o.hooks)),
		BasicInfo:       steps.NewBasicInfo(store),
		DriverSelection: steps.NewDriverSelection(store, o.guard),
		Summary:         steps.NewSummary(store, o.guard),
		guard:           o.guard,
		logger:          o.logger,
	}
}

// Enter handles an arrival at path: the store follows the path, nav (if any)
// is applied once, and the arriving step fetches what it is missing.
func (w *Wizard) Enter(ctx context.Context, path string, nav *domain.NavState) {
	w.Nav.Sync(path, nav)

	step := w.Store.State().Step
	w.guard.Mount(step)
	switch step {
	case steps.DriverSelectionStep:
		w.DriverSelection.Enter(ctx)
	case steps.SummaryStep:
		w.Summary.Enter(ctx)
	}
	w.logger.Debug("entered step", "step", step, "path", path)
}

// State returns a snapshot of the form state.
func (w *Wizard) State() domain.FormState {
	return w.Store.State()
}

// Buttons returns the action buttons of the current step.
func (w *Wizard) Buttons() navigator.Buttons {
	return navigator.ButtonsFor(w.Store.State())
}
