package session

import "sync/atomic"

// commandGate is a single-permit flag preventing overlapping transport
// commands. A second acquire while one is held is refused, never queued.
type commandGate struct {
	held atomic.Bool
}

// TryAcquire grants the permit if free.
func (g *commandGate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release returns the permit. Safe to call from a deferred path.
func (g *commandGate) Release() {
	g.held.Store(false)
}

// Held reports whether a command is currently in flight. Background polls
// check this and skip themselves rather than read stale in-flight state.
func (g *commandGate) Held() bool {
	return g.held.Load()
}
