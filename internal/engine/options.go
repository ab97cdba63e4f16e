// Package engine implements the protocol progression state machine. It holds
// at most one active execution and the set of completed levels, enforces
// strictly sequential progression through a catalog, and reports every
// transition as an event for the presentation layer to render.
package engine

import (
	"time"

	"github.com/alexander-akhmetov/psoc/internal/event"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now for startedAt/completedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithIDFunc replaces the execution ID generator (UUIDv4 by default).
func WithIDFunc(newID func() string) Option {
	return func(e *Engine) {
		if newID != nil {
			e.newID = newID
		}
	}
}

// WithHandler sets the receiver for transition events. Handlers run
// synchronously after the state change is applied.
func WithHandler(h event.Handler) Option {
	return func(e *Engine) {
		e.handler = h
	}
}
