package form

import (
	"context"
	"time"

	"github.com/aretw0/paddock/pkg/domain"
)

// fetchHandler drives the pending/fulfilled/rejected cycle for one list.
// The Store holds one instance per remote resource.
type fetchHandler[T any] struct {
	resource domain.Resource
	fetch    func(ctx context.Context) ([]T, error)
	field    func(st *domain.FormState) *[]T
}

func (h fetchHandler[T]) pending(st *domain.FormState) {
	st.Loading = true
	st.Error = nil
}

// fulfilled replaces the target list. A nil payload becomes an empty list.
func (h fetchHandler[T]) fulfilled(st *domain.FormState, items []T) {
	st.Loading = false
	if items == nil {
		items = []T{}
	}
	*h.field(st) = items
}

func (h fetchHandler[T]) rejected(st *domain.FormState, msg string) {
	st.Loading = false
	st.Error = &msg
}

// apply routes an externally supplied event through the same transitions.
// A payload of the wrong shape degrades to an empty list.
func (h fetchHandler[T]) apply(st *domain.FormState, phase domain.FetchPhase, payload any, msg string) {
	switch phase {
	case domain.PhasePending:
		h.pending(st)
	case domain.PhaseFulfilled:
		items, _ := payload.([]T)
		h.fulfilled(st, items)
	case domain.PhaseRejected:
		if msg == "" {
			msg = domain.FallbackErrorMessage
		}
		h.rejected(st, msg)
	}
}

// run executes the three phases against s. The network call happens outside
// the store lock, so readers observe Loading=true while it is in flight.
func (h fetchHandler[T]) run(ctx context.Context, s *Store) {
	s.mu.Lock()
	h.pending(&s.state)
	s.mu.Unlock()

	s.emitFetch(ctx, s.hooks.OnFetchStart, &domain.FetchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFetchStart},
		Resource:  h.resource,
		Phase:     domain.PhasePending,
	})
	s.logger.Debug("fetch started", "resource", h.resource)

	start := time.Now()
	items, err := h.fetch(ctx)
	elapsed := time.Since(start)

	end := &domain.FetchEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFetchEnd},
		Resource:  h.resource,
		Duration:  elapsed,
	}

	s.mu.Lock()
	if err != nil {
		msg := domain.ErrorMessage(err)
		h.rejected(&s.state, msg)
		end.Phase = domain.PhaseRejected
		end.Message = msg
	} else {
		h.fulfilled(&s.state, items)
		end.Phase = domain.PhaseFulfilled
		end.Count = len(items)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("fetch failed", "resource", h.resource, "err", err, "duration", elapsed)
	} else {
		s.logger.Debug("fetch fulfilled", "resource", h.resource, "count", end.Count, "duration", elapsed)
	}
	s.emitFetch(ctx, s.hooks.OnFetchEnd, end)
}
