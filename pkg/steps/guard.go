package steps

import (
	"container/list"
	"sync"
	"time"

	"github.com/aretw0/paddock/pkg/domain"
)

// Guard remembers which lists a mounted view already asked for.
// It lives next to a session, never inside its serialized state.
// Mounting a different step resets it, the way a remounted view starts fresh.
type Guard struct {
	mu      sync.Mutex
	mounted int
	fetched map[domain.Resource]bool
}

// NewGuard returns a guard with nothing mounted.
func NewGuard() *Guard {
	return &Guard{fetched: make(map[domain.Resource]bool)}
}

// Mount records that step is now on screen.
func (g *Guard) Mount(step int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mounted != step {
		g.mounted = step
		clear(g.fetched)
	}
}

// Fetched reports whether r was already requested by the mounted view.
func (g *Guard) Fetched(r domain.Resource) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetched[r]
}

// mark flags r and reports whether it was unflagged before.
func (g *Guard) mark(r domain.Resource) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetched[r] {
		return false
	}
	g.fetched[r] = true
	return true
}

// DefaultMaxGuards caps how many session guards are kept in memory.
const DefaultMaxGuards = 10000

// Guards keeps one Guard per session ID. Entries are dropped when the
// session is deleted, when they sit idle longer than the TTL, or when the
// least recently used one must make room. A dropped guard only means a
// mounted view may ask for its list again.
// The zero value is ready to use with DefaultMaxGuards and no TTL.
type Guards struct {
	mu      sync.Mutex
	max     int
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*list.Element
	lru     *list.List // front is most recently used
}

type guardEntry struct {
	id       string
	guard    *Guard
	lastUsed time.Time
}

// GuardsOption configures Guards.
type GuardsOption func(*Guards)

// WithMaxGuards caps the number of guards kept. Values below 1 are ignored.
func WithMaxGuards(n int) GuardsOption {
	return func(gs *Guards) {
		if n > 0 {
			gs.max = n
		}
	}
}

// WithGuardTTL drops guards not used for ttl. Zero keeps them until evicted.
func WithGuardTTL(ttl time.Duration) GuardsOption {
	return func(gs *Guards) {
		gs.ttl = ttl
	}
}

// NewGuards returns an empty set of guards.
func NewGuards(opts ...GuardsOption) *Guards {
	gs := &Guards{}
	for _, opt := range opts {
		opt(gs)
	}
	gs.init()
	return gs
}

func (gs *Guards) init() {
	if gs.entries != nil {
		return
	}
	if gs.max <= 0 {
		gs.max = DefaultMaxGuards
	}
	if gs.now == nil {
		gs.now = time.Now
	}
	gs.entries = make(map[string]*list.Element)
	gs.lru = list.New()
}

// For returns the guard of sessionID, creating it on first use.
func (gs *Guards) For(sessionID string) *Guard {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.init()

	now := gs.now()
	gs.expire(now)
	if el, ok := gs.entries[sessionID]; ok {
		e := el.Value.(*guardEntry)
		e.lastUsed = now
		gs.lru.MoveToFront(el)
		return e.guard
	}

	e := &guardEntry{id: sessionID, guard: NewGuard(), lastUsed: now}
	gs.entries[sessionID] = gs.lru.PushFront(e)
	for gs.lru.Len() > gs.max {
		gs.remove(gs.lru.Back())
	}
	return e.guard
}

// Forget drops the guard of sessionID.
func (gs *Guards) Forget(sessionID string) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if el, ok := gs.entries[sessionID]; ok {
		gs.remove(el)
	}
}

// Len reports how many guards are held.
func (gs *Guards) Len() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	if gs.lru == nil {
		return 0
	}
	return gs.lru.Len()
}

// expire drops idle entries from the back of the list. Caller holds mu.
func (gs *Guards) expire(now time.Time) {
	if gs.ttl <= 0 {
		return
	}
	for el := gs.lru.Back(); el != nil; el = gs.lru.Back() {
		if now.Sub(el.Value.(*guardEntry).lastUsed) < gs.ttl {
			return
		}
		gs.remove(el)
	}
}

func (gs *Guards) remove(el *list.Element) {
	delete(gs.entries, el.Value.(*guardEntry).id)
	gs.lru.Remove(el)
}
