package navigator

import (
	"log/slog"
	"time"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/validator"
)

// Store is the subset of the form store the navigator drives.
type Store interface {
	State() domain.FormState
	SetStep(n int)
	SetBasicInfo(p domain.BasicInfo)
	SelectDriver(d *domain.Driver)
	SetValidationErrors(p domain.ValidationErrors)
	ClearForm()
}

// Navigation describes where the front-end must go next.
type Navigation struct {
	Path string
	// Replace asks the front-end to replace the current history entry.
	Replace bool
	// State is handed to the destination once and never put into the URL.
	State domain.NavState
}

// Navigator applies Next/Back/Clear and step-indicator clicks to a store.
type Navigator struct {
	store  Store
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

// Option configures the Navigator.
type Option func(*Navigator)

// WithLogger configures a logger for the Navigator.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Navigator) {
		n.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks (OnValidation is used).
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(n *Navigator) {
		n.hooks = hooks
	}
}

// New creates a Navigator bound to store.
func New(store Store, opts ...Option) *Navigator {
	n := &Navigator{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Sync brings the store in line with an arrival at path.
// nav, when present, restores the details carried by the navigation.
func (n *Navigator) Sync(path string, nav *domain.NavState) {
	n.store.SetStep(StepFromPath(path))
	if nav == nil {
		return
	}

	name, email := nav.UserDetails.Name, nav.UserDetails.Email
	n.store.SetBasicInfo(domain.BasicInfo{Name: &name, Email: &email})
	if nav.UserDetails.HasSelectedDriver() {
		n.store.SelectDriver(nav.UserDetails.SelectedDriver)
	}
}

// Validate checks the current step and merges the errors into the store.
func (n *Navigator) Validate() bool {
	st := n.store.State()
	res := validator.Validate(st.Step, st.UserDetails, st.ValidationError)
	n.store.SetValidationErrors(res.Errors)

	if n.hooks.OnValidation != nil {
		n.hooks.OnValidation(&domain.ValidationEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventValidation},
			Step:      st.Step,
			Valid:     res.IsValid,
			Errors:    res.Errors,
		})
	}
	if !res.IsValid {
		n.logger.Debug("validation failed", "step", st.Step, "errors", res.Errors)
	}
	return res.IsValid
}

// Next validates and moves one step forward, staying put on the last step.
// It returns false when validation fails; nothing is dispatched then.
func (n *Navigator) Next() (*Navigation, bool) {
	if !n.Validate() {
		return nil, false
	}
	step := n.store.State().Step
	next := step + 1
	if step >= StepCount {
		next = step
	}
	return n.goTo(next), true
}

// Back moves one step backward. It is a no-op on the first step.
func (n *Navigator) Back() (*Navigation, bool) {
	step := n.store.State().Step
	if step <= 1 {
		return nil, false
	}
	return n.goTo(step - 1), true
}

// Clear returns to the first step with blank details.
func (n *Navigator) Clear() *Navigation {
	n.store.SetStep(1)
	nav := &Navigation{
		Path:    PathForStep(1),
		Replace: true,
		State:   domain.NavState{UserDetails: domain.BlankUserDetails()},
	}
	n.store.ClearForm()
	n.logger.Debug("form cleared")
	return nav
}

// JumpTo handles a click on a step-indicator label.
// Unknown labels and failed validation leave the store untouched.
func (n *Navigator) JumpTo(label string) (*Navigation, bool) {
	step, ok := StepForLabel(label)
	if !ok {
		n.logger.Debug("unknown step label", "label", label)
		return nil, false
	}
	if !n.Validate() {
		return nil, false
	}
	return n.goTo(step), true
}

func (n *Navigator) goTo(step int) *Navigation {
	n.store.SetStep(step)
	st := n.store.State()
	n.logger.Debug("navigate", "step", step, "path", PathForStep(step))
	return &Navigation{
		Path:    PathForStep(step),
		Replace: true,
		State:   domain.NavState{UserDetails: st.UserDetails},
	}
}

// Buttons reports which action buttons a step shows.
type Buttons struct {
	Back         bool
	Next         bool
	NextDisabled bool
	Clear        bool
}

// ButtonsFor derives the visible buttons from the state.
func ButtonsFor(st domain.FormState) Buttons {
	return Buttons{
		Back:         st.Step > 1,
		Next:         st.Step < StepCount,
		NextDisabled: st.Loading,
		Clear:        st.Step == StepCount,
	}
}
