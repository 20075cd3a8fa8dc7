package form

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aretw0/paddock/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type userErr struct{ msg string }

func (e *userErr) Error() string       { return "api: " + e.msg }
func (e *userErr) UserMessage() string { return e.msg }

// fakeSource serves canned lists and counts calls.
type fakeSource struct {
	mu        sync.Mutex
	drivers   []domain.Driver
	standings []domain.DriverStanding
	err       error
	calls     map[domain.Resource]int

	// block, when set, is waited on before answering.
	block chan struct{}
}

func (f *fakeSource) record(r domain.Resource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[domain.Resource]int{}
	}
	f.calls[r]++
}

func (f *fakeSource) FetchDriversList(ctx context.Context) ([]domain.Driver, error) {
	f.record(domain.ResourceDrivers)
	if f.block != nil {
		<-f.block
	}
	return f.drivers, f.err
}

func (f *fakeSource) FetchDriverStandingsList(ctx context.Context) ([]domain.DriverStanding, error) {
	f.record(domain.ResourceStandings)
	if f.block != nil {
		<-f.block
	}
	return f.standings, f.err
}

func ptr[T any](v T) *T { return &v }

func TestStore_InitialState(t *testing.T) {
	s := New(nil)
	st := s.State()

	assert.Equal(t, 1, st.Step)
	assert.Equal(t, "", st.UserDetails.Name)
	assert.Equal(t, "", st.UserDetails.Email)
	require.NotNil(t, st.UserDetails.SelectedDriver)
	assert.Equal(t, "", st.UserDetails.SelectedDriver.DriverID)
	assert.Empty(t, st.DriversList)
	assert.Empty(t, st.DriverStandings)
	assert.False(t, st.Loading)
	assert.Nil(t, st.Error)
	assert.Empty(t, st.ValidationError)
}

func TestStore_SetStepNoClamp(t *testing.T) {
	s := New(nil)
	for _, n := range []int{2, 3, 0, -4, 99} {
		s.SetStep(n)
		assert.Equal(t, n, s.State().Step)
	}
}

func TestStore_SetBasicInfoMerges(t *testing.T) {
	s := New(nil)
	s.SetBasicInfo(domain.BasicInfo{Name: ptr("John Doe"), Email: ptr("john@example.com")})
	s.SetBasicInfo(domain.BasicInfo{Email: ptr("jd@example.com")})

	ud := s.State().UserDetails
	assert.Equal(t, "John Doe", ud.Name)
	assert.Equal(t, "jd@example.com", ud.Email)
}

func TestStore_SelectDriver(t *testing.T) {
	s := New(nil)
	driver := &domain.Driver{DriverID: "hamilton", GivenName: "Lewis", FamilyName: "Hamilton"}
	s.SelectDriver(driver)

	got := s.State().UserDetails.SelectedDriver
	require.NotNil(t, got)
	assert.Equal(t, *driver, *got)

	// The store keeps its own copy.
	driver.DriverID = "changed"
	assert.Equal(t, "hamilton", s.State().UserDetails.SelectedDriver.DriverID)

	s.SelectDriver(nil)
	assert.Nil(t, s.State().UserDetails.SelectedDriver)
}

func TestStore_SetValidationErrorsMerges(t *testing.T) {
	s := New(nil)
	s.SetValidationErrors(domain.ValidationErrors{"name": "Name is required", "email": "Email is required"})
	s.SetValidationErrors(domain.ValidationErrors{"name": ""})

	errs := s.State().ValidationError
	assert.Equal(t, "", errs["name"])
	assert.Equal(t, "Email is required", errs["email"])
}

func TestStore_ClearForm(t *testing.T) {
	msg := "old failure"
	initial := domain.NewFormState()
	initial.Step = 3
	initial.UserDetails = domain.UserDetails{
		Name: "Ada", Email: "ada@example.com",
		SelectedDriver: &domain.Driver{DriverID: "alonso"},
	}
	initial.DriversList = []domain.Driver{{DriverID: "alonso"}}
	initial.DriverStandings = []domain.DriverStanding{{Position: "1", Driver: domain.Driver{DriverID: "alonso"}}}
	initial.ValidationError = domain.ValidationErrors{"email": "Email is required"}
	initial.Error = &msg
	initial.Loading = true

	s := New(nil, WithState(initial))
	s.ClearForm()
	st := s.State()

	assert.Equal(t, 1, st.Step)
	assert.Equal(t, domain.BlankUserDetails(), st.UserDetails)
	assert.Equal(t, domain.ValidationErrors{}, st.ValidationError)
	assert.Equal(t, initial.DriversList, st.DriversList)
	assert.Equal(t, initial.DriverStandings, st.DriverStandings)
	assert.True(t, st.Loading)
	require.NotNil(t, st.Error)
	assert.Equal(t, msg, *st.Error)
}

func TestStore_ApplyLifecycle(t *testing.T) {
	for _, res := range []domain.Resource{domain.ResourceDrivers, domain.ResourceStandings} {
		t.Run(string(res), func(t *testing.T) {
			prior := "previous"
			initial := domain.NewFormState()
			initial.Error = &prior
			s := New(nil, WithState(initial))

			s.Apply(Action{Resource: res, Phase: domain.PhasePending})
			st := s.State()
			assert.True(t, st.Loading)
			assert.Nil(t, st.Error)

			s.Apply(Action{Resource: res, Phase: domain.PhaseRejected, Message: "Error fetching " + string(res)})
			st = s.State()
			assert.False(t, st.Loading)
			require.NotNil(t, st.Error)
			assert.Equal(t, "Error fetching "+string(res), *st.Error)
		})
	}
}

func TestStore_ApplyFulfilledTargetsOwnList(t *testing.T) {
	s := New(nil)
	drivers := []domain.Driver{{DriverID: "hamilton", GivenName: "Lewis", FamilyName: "Hamilton"}}
	standings := []domain.DriverStanding{{Position: "1", Driver: domain.Driver{DriverID: "verstappen"}}}

	s.Apply(Action{Resource: domain.ResourceDrivers, Phase: domain.PhasePending})
	s.Apply(Action{Resource: domain.ResourceDrivers, Phase: domain.PhaseFulfilled, Payload: drivers})
	st := s.State()
	assert.False(t, st.Loading)
	assert.Equal(t, drivers, st.DriversList)
	assert.Empty(t, st.DriverStandings)

	s.Apply(Action{Resource: domain.ResourceStandings, Phase: domain.PhaseFulfilled, Payload: standings})
	st = s.State()
	assert.Equal(t, standings, st.DriverStandings)
	assert.Equal(t, drivers, st.DriversList)
}

func TestStore_ApplyMalformedPayloadDegrades(t *testing.T) {
	s := New(nil)
	s.Apply(Action{Resource: domain.ResourceDrivers, Phase: domain.PhaseFulfilled, Payload: "not a list"})
	st := s.State()
	assert.NotNil(t, st.DriversList)
	assert.Empty(t, st.DriversList)

	s.Apply(Action{Resource: domain.ResourceStandings, Phase: domain.PhaseRejected})
	require.NotNil(t, s.State().Error)
	assert.Equal(t, domain.FallbackErrorMessage, *s.State().Error)
}

func TestStore_FetchDrivers(t *testing.T) {
	src := &fakeSource{drivers: []domain.Driver{{DriverID: "hamilton"}, {DriverID: "russell"}}}

	var events []*domain.FetchEvent
	hooks := domain.LifecycleHooks{
		OnFetchStart: func(ctx context.Context, e *domain.FetchEvent) { events = append(events, e) },
		OnFetchEnd:   func(ctx context.Context, e *domain.FetchEvent) { events = append(events, e) },
	}
	s := New(src, WithLifecycleHooks(hooks))
	s.FetchDrivers(context.Background())

	st := s.State()
	assert.False(t, st.Loading)
	assert.Nil(t, st.Error)
	assert.Len(t, st.DriversList, 2)

	require.Len(t, events, 2)
	assert.Equal(t, domain.PhasePending, events[0].Phase)
	assert.Equal(t, domain.PhaseFulfilled, events[1].Phase)
	assert.Equal(t, 2, events[1].Count)
	assert.Equal(t, domain.ResourceDrivers, events[1].Resource)
}

func TestStore_FetchFailureLandsInError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail message", &userErr{msg: "Service unavailable"}, "Service unavailable"},
		{"opaque error", errors.New("connection reset"), domain.FallbackErrorMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &fakeSource{err: tt.err}
			s := New(src)
			s.FetchDriverStandings(context.Background())

			st := s.State()
			assert.False(t, st.Loading)
			require.NotNil(t, st.Error)
			assert.Equal(t, tt.want, *st.Error)
		})
	}
}

func TestStore_FetchWithoutSource(t *testing.T) {
	s := New(nil)
	s.FetchDrivers(context.Background())
	require.NotNil(t, s.State().Error)
	assert.Equal(t, domain.FallbackErrorMessage, *s.State().Error)
}

func TestStore_FetchClearsPreviousError(t *testing.T) {
	src := &fakeSource{err: errors.New("down")}
	s := New(src)
	s.FetchDrivers(context.Background())
	require.NotNil(t, s.State().Error)

	src.err = nil
	src.drivers = []domain.Driver{{DriverID: "piastri"}}
	s.FetchDrivers(context.Background())
	assert.Nil(t, s.State().Error)
	assert.Len(t, s.State().DriversList, 1)
}

func TestStore_LoadingVisibleWhileInFlight(t *testing.T) {
	src := &fakeSource{
		standings: []domain.DriverStanding{},
		block:     make(chan struct{}),
	}
	started := make(chan struct{})
	s := New(src, WithLifecycleHooks(domain.LifecycleHooks{
		OnFetchStart: func(ctx context.Context, e *domain.FetchEvent) { close(started) },
	}))

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.FetchDriverStandings(context.Background())
	}()

	<-started
	assert.True(t, s.State().Loading, "state must report loading while the request is in flight")

	close(src.block)
	<-done
	st := s.State()
	assert.False(t, st.Loading)
	assert.NotNil(t, st.DriverStandings)
	assert.Empty(t, st.DriverStandings)
}

func TestStore_StepHook(t *testing.T) {
	var got []domain.StepEvent
	s := New(nil, WithLifecycleHooks(domain.LifecycleHooks{
		OnStepChange: func(e *domain.StepEvent) { got = append(got, *e) },
	}))

	s.SetStep(2)
	s.SetStep(2)
	s.ClearForm()

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].From)
	assert.Equal(t, 2, got[0].To)
	assert.Equal(t, 1, got[1].To)
}
