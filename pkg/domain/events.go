package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStepChange EventType = "step_change"
	EventFetchStart EventType = "fetch_start"
	EventFetchEnd   EventType = "fetch_end"
	EventValidation EventType = "validation"
)

// Resource names a remote list held by the form.
type Resource string

const (
	ResourceDrivers   Resource = "drivers"
	ResourceStandings Resource = "standings"
)

// FetchPhase is one of the three phases every fetch goes through.
type FetchPhase string

const (
	PhasePending   FetchPhase = "pending"
	PhaseFulfilled FetchPhase = "fulfilled"
	PhaseRejected  FetchPhase = "rejected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// StepEvent is emitted when the current step changes.
type StepEvent struct {
	EventBase
	From int `json:"from"`
	To   int `json:"to"`
}

// FetchEvent is emitted when a fetch starts and when it settles.
type FetchEvent struct {
	EventBase
	Resource Resource      `json:"resource"`
	Phase    FetchPhase    `json:"phase"`
	Count    int           `json:"count,omitempty"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ValidationEvent is emitted after each validation pass.
type ValidationEvent struct {
	EventBase
	Step   int              `json:"step"`
	Valid  bool             `json:"valid"`
	Errors ValidationErrors `json:"errors,omitempty"`
}

// LifecycleHooks defines callbacks for wizard observability.
// Any hook may be nil.
type LifecycleHooks struct {
	OnStepChange func(*StepEvent)
	OnFetchStart func(context.Context, *FetchEvent)
	OnFetchEnd   func(context.Context, *FetchEvent)
	OnValidation func(*ValidationEvent)
}

// Chain runs h and then other for every event.
func (h LifecycleHooks) Chain(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnStepChange: func(e *StepEvent) {
			if h.OnStepChange != nil {
				h.OnStepChange(e)
			}
			if other.OnStepChange != nil {
				other.OnStepChange(e)
			}
		},
		OnFetchStart: func(ctx context.Context, e *FetchEvent) {
			if h.OnFetchStart != nil {
				h.OnFetchStart(ctx, e)
			}
			if other.OnFetchStart != nil {
				other.OnFetchStart(ctx, e)
			}
		},
		OnFetchEnd: func(ctx context.Context, e *FetchEvent) {
			if h.OnFetchEnd != nil {
				h.OnFetchEnd(ctx, e)
			}
			if other.OnFetchEnd != nil {
				other.OnFetchEnd(ctx, e)
			}
		},
		OnValidation: func(e *ValidationEvent) {
			if h.OnValidation != nil {
				h.OnValidation(e)
			}
			if other.OnValidation != nil {
				other.OnValidation(e)
			}
		},
	}
}
