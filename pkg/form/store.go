package form

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/paddock/internal/logging"
	"github.com/aretw0/paddock/pkg/domain"
	"github.com/aretw0/paddock/pkg/ports"
)

var errNoSource = errors.New("no driver source configured")

// Store holds the state of one wizard session.
// It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	state domain.FormState

	source ports.DriverSource
	hooks  domain.LifecycleHooks
	logger *slog.Logger

	drivers   fetchHandler[domain.Driver]
	standings fetchHandler[domain.DriverStanding]
}

// Option configures the Store.
type Option func(*Store)

// WithState restores a previously saved state instead of starting fresh.
func WithState(state domain.FormState) Option {
	return func(s *Store) {
		s.state = state.Clone()
	}
}

// WithLogger configures a logger for the Store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Store) {
		s.hooks = hooks
	}
}

// New creates a Store reading remote lists from source.
// A nil source makes every fetch resolve as rejected.
func New(source ports.DriverSource, opts ...Option) *Store {
	s := &Store{
		state:  domain.NewFormState(),
		source: source,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.state.ValidationError == nil {
		s.state.ValidationError = domain.ValidationErrors{}
	}

	s.drivers = fetchHandler[domain.Driver]{
		resource: domain.ResourceDrivers,
		fetch: func(ctx context.Context) ([]domain.Driver, error) {
			if s.source == nil {
				return nil, errNoSource
			}
			return s.source.FetchDriversList(ctx)
		},
		field: func(st *domain.FormState) *[]domain.Driver { return &st.DriversList },
	}
	s.standings = fetchHandler[domain.DriverStanding]{
		resource: domain.ResourceStandings,
		fetch: func(ctx context.Context) ([]domain.DriverStanding, error) {
			if s.source == nil {
				return nil, errNoSource
			}
			return s.source.FetchDriverStandingsList(ctx)
		},
		field: func(st *domain.FormState) *[]domain.DriverStanding { return &st.DriverStandings },
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() domain.FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// SetStep sets the current step. Range checks are the caller's job.
func (s *Store) SetStep(n int) {
	s.mu.Lock()
	from := s.state.Step
	s.state.Step = n
	s.mu.Unlock()

	if from != n && s.hooks.OnStepChange != nil {
		s.hooks.OnStepChange(&domain.StepEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventStepChange},
			From:      from,
			To:        n,
		})
	}
}

// SetBasicInfo merges the present keys of p into the user details.
func (s *Store) SetBasicInfo(p domain.BasicInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Name != nil {
		s.state.UserDetails.Name = *p.Name
	}
	if p.Email != nil {
		s.state.UserDetails.Email = *p.Email
	}
}

// SelectDriver sets the selected driver; nil clears it.
func (s *Store) SelectDriver(d *domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d == nil {
		s.state.UserDetails.SelectedDriver = nil
		return
	}
	cp := *d
	s.state.UserDetails.SelectedDriver = &cp
}

// SetValidationErrors merges p into the validation errors.
// Keys omitted from p are left untouched.
func (s *Store) SetValidationErrors(p domain.ValidationErrors) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ValidationError = s.state.ValidationError.Merge(p)
}

// ClearForm resets user details, validation errors and step.
// Fetched lists, loading and error are kept.
func (s *Store) ClearForm() {
	s.mu.Lock()
	s.state.UserDetails = domain.BlankUserDetails()
	s.state.ValidationError = domain.ValidationErrors{}
	s.mu.Unlock()

	s.SetStep(1)
}

// FetchDrivers loads the drivers list into DriversList.
func (s *Store) FetchDrivers(ctx context.Context) {
	s.drivers.run(ctx, s)
}

// FetchDriverStandings loads the current standings into DriverStandings.
func (s *Store) FetchDriverStandings(ctx context.Context) {
	s.standings.run(ctx, s)
}

// Action is a fetch phase transition applied without performing the fetch.
// Payload must be []domain.Driver or []domain.DriverStanding for the
// fulfilled phase; anything else is treated as an empty list.
type Action struct {
	Resource domain.Resource
	Phase    domain.FetchPhase
	Payload  any
	Message  string
}

// Apply dispatches a phase transition through the resource's fetch handler.
// Unknown resources are ignored.
func (s *Store) Apply(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch a.Resource {
	case domain.ResourceDrivers:
		s.drivers.apply(&s.state, a.Phase, a.Payload, a.Message)
	case domain.ResourceStandings:
		s.standings.apply(&s.state, a.Phase, a.Payload, a.Message)
	}
}

func (s *Store) emitFetch(ctx context.Context, hook func(context.Context, *domain.FetchEvent), e *domain.FetchEvent) {
	if hook != nil {
		hook(ctx, e)
	}
}
