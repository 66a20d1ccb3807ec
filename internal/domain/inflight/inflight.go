// Package inflight guards against concurrent duplicate scoring runs.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"

	challenge "github.com/okian/enso/internal/domain/challenge"
)

// Key identifies one user's daily attempt window.
type Key struct {
	UserID int64
	Day    challenge.Day
}

// Gate tracks (user, day) pairs with a scoring run in flight so one user
// cannot occupy several workers with the same daily attempt. The gate is
// advisory: the ledger's primary key remains the source of truth for
// at-most-once recording.
type Gate interface {
	// Acquire marks the pair active and reports whether it was free.
	// A false return means another run for the same pair is in flight.
	Acquire(ctx context.Context, key Key) bool

	// Release frees the pair once its scoring run resolves, whatever the
	// outcome. Releasing a pair that is not held is a no-op.
	Release(ctx context.Context, key Key)

	// Size returns the number of active pairs.
	Size() int64
}

type inMemoryGate struct {
	mu     sync.Mutex
	active map[Key]struct{}
	size   atomic.Int64
}

// NewGate creates an empty in-memory gate.
func NewGate() Gate {
	return &inMemoryGate{active: make(map[Key]struct{})}
}

// Acquire marks the pair active and reports whether it was free.
func (g *inMemoryGate) Acquire(_ context.Context, key Key) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.active[key]; exists {
		return false
	}
	g.active[key] = struct{}{}
	g.size.Add(1)
	return true
}

// Release frees the pair.
func (g *inMemoryGate) Release(_ context.Context, key Key) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.active[key]; exists {
		delete(g.active, key)
		g.size.Add(-1)
	}
}

// Size returns the number of active pairs.
func (g *inMemoryGate) Size() int64 {
	return g.size.Load()
}
