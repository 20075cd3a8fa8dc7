package steps

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGuards_EvictsLeastRecentlyUsed(t *testing.T) {
	gs := NewGuards(WithMaxGuards(3))
	a := gs.For("a")
	gs.For("b")
	gs.For("c")
	assert.Same(t, a, gs.For("a"), "touching a makes b the oldest")

	gs.For("d")
	assert.Equal(t, 3, gs.Len())
	assert.Same(t, a, gs.For("a"))
	assert.NotContains(t, gs.entries, "b")
}

func TestGuards_ExpiresIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	gs := NewGuards(WithGuardTTL(time.Minute))
	gs.now = func() time.Time { return now }

	old := gs.For("old")
	now = now.Add(30 * time.Second)
	gs.For("fresh")

	now = now.Add(45 * time.Second)
	gs.For("fresh")
	assert.Equal(t, 1, gs.Len(), "old sat idle past the TTL")
	assert.NotSame(t, old, gs.For("old"))
}

func TestGuards_BoundedUnderChurn(t *testing.T) {
	gs := NewGuards(WithMaxGuards(100))
	for i := 0; i < 1000; i++ {
		gs.For(fmt.Sprintf("s%d", i))
	}
	assert.Equal(t, 100, gs.Len())
	assert.Len(t, gs.entries, 100)
}
