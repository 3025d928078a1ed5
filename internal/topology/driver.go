package topology

import (
	"context"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/event"
)

// Source is a configured, not-yet-started source driver.
type Source interface {
	// Prepare acquires the driver's resources (a socket bind, a
	// generator seed, …), transitioning Stale -> Running. Failure here
	// is a typed StartingError, distinct from a configuration error.
	Prepare(ctx context.Context) (PreparedSource, error)
}

// PreparedSource is a Running source, ready to be spawned.
type PreparedSource interface {
	// Execute runs until completion, emitting events to collector. It
	// returns when the driver's own input is exhausted or a fatal send
	// error occurs; it never returns solely because a downstream
	// channel filled up (that suspends the caller instead).
	Execute(collector *collector.Collector) error
}

// Sink is a configured, not-yet-started sink driver.
type Sink interface {
	Prepare(ctx context.Context) (PreparedSink, error)
}

// PreparedSink is a Running sink, ready to be spawned.
type PreparedSink interface {
	// Execute loops on receiver until it closes.
	Execute(receiver <-chan event.Event) error
}
