package jit

import "sync/atomic"

// Handler consumes notifications.
type Handler interface {
	Handle(ev Event)
}

// Gate forwards notifications to a Handler while enabled. It plays the
// engine side of Instrumentation when notifications come from a replayed log.
type Gate struct {
	next    Handler
	off     atomic.Bool
	dropped atomic.Int64
}

// NewGate returns an enabled gate in front of next.
func NewGate(next Handler) *Gate {
	return &Gate{next: next}
}

// SetEnabled turns delivery on or off.
func (g *Gate) SetEnabled(on bool) {
	g.off.Store(!on)
}

// Enabled reports whether notifications are delivered.
func (g *Gate) Enabled() bool {
	return !g.off.Load()
}

// Handle delivers ev unless the gate is closed.
func (g *Gate) Handle(ev Event) {
	if g.off.Load() {
		g.dropped.Add(1)
		return
	}
	g.next.Handle(ev)
}

// Dropped returns how many notifications arrived while disabled.
func (g *Gate) Dropped() int64 {
	return g.dropped.Load()
}

// Tee delivers each notification to every handler in order.
type Tee []Handler

// Handle forwards ev.
func (t Tee) Handle(ev Event) {
	for _, h := range t {
		h.Handle(ev)
	}
}
