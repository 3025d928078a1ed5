// Package collector implements the fan-out primitive handed to every
// source and transform: a Collector maps a named output to a bounded
// channel sender and dispatches events to it.
//
// Collector's map-of-channels bookkeeping mirrors the structural shape
// of a publish/subscribe event bus, but unlike a non-blocking bus every
// registered send here blocks on a full channel (back-pressure); only
// sends to an unknown or absent output are dropped.
package collector

import (
	"context"
	"log/slog"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/loglevel"
)

// Sender is the send-only half of a node's input channel.
type Sender chan<- event.Event

// Collector is the only handle a source or transform holds to emit
// events. It hides whether a given output is actually connected.
type Collector struct {
	def        Sender
	hasDefault bool
	named      map[string]Sender
	logger     *slog.Logger
}

// New returns an empty Collector. logger may be nil.
func New(logger *slog.Logger) *Collector {
	return &Collector{named: make(map[string]Sender), logger: logger}
}

// AddOutput registers sender under output. A default registration
// replaces any previous default; a named registration overwrites any
// previous entry of the same name.
func (c *Collector) AddOutput(output component.NamedOutput, sender Sender) {
	if output.IsDefault() {
		c.def = sender
		c.hasDefault = true
		return
	}
	name, _ := output.Name()
	c.named[string(name)] = sender
}

func (c *Collector) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// trace logs a single send at loglevel.Trace: wire-level forensics,
// noisy enough per-event that it doesn't belong at Debug.
func (c *Collector) trace(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Log(context.Background(), loglevel.Trace, msg, args...)
	}
}

// SendDefault enqueues to the default sender, blocking if its channel
// is full. If no default sender is registered, the event is dropped
// silently (logged at debug level): the upstream node declared no
// default output, so there is nothing downstream that expects it.
func (c *Collector) SendDefault(e event.Event) {
	if !c.hasDefault {
		c.debug("dropping event: no default output connected")
		return
	}
	c.def <- e
	c.trace("sent event", "output", "default")
}

// SendNamed enqueues to the named output. DefaultOutput delegates to
// SendDefault. An unknown name is dropped silently (logged at debug
// level).
func (c *Collector) SendNamed(output component.NamedOutput, e event.Event) {
	if output.IsDefault() {
		c.SendDefault(e)
		return
	}
	name, _ := output.Name()
	sender, ok := c.named[string(name)]
	if !ok {
		c.debug("dropping event: unknown output", "output", name)
		return
	}
	sender <- e
	c.trace("sent event", "output", name)
}

// SendAll clones e and enqueues to the default sender (if present) and
// every named sender. Order across outputs is unspecified; each
// individual send blocks on its own channel's capacity. With no sender
// registered at all, the event is dropped silently (logged at debug
// level).
func (c *Collector) SendAll(e event.Event) {
	if !c.hasDefault && len(c.named) == 0 {
		c.debug("dropping event: no output connected")
		return
	}
	if c.hasDefault {
		c.def <- e.Clone()
		c.trace("sent event", "output", "default")
	}
	for name, sender := range c.named {
		sender <- e.Clone()
		c.trace("sent event", "output", name)
	}
}

// HasDefault reports whether a default sender is registered.
func (c *Collector) HasDefault() bool { return c.hasDefault }

// Close closes every registered sender. Called once by the owning
// node's task after it stops producing; this is what cascades shutdown
// downstream (spec.md §5: a dropped Collector closes its senders).
func (c *Collector) Close() {
	if c.hasDefault {
		close(c.def)
	}
	for _, sender := range c.named {
		close(sender)
	}
}
