// Package topology wires a validated graph.Graph into running
// goroutines: one bounded channel per sink and per transform, one
// Collector per source and per transform, and a three-phase startup
// (wire, spawn, await) that spawns every sink, then every transform,
// then every source; the order among nodes of the same kind is not
// defined.
package topology

import (
	"context"
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/graph"
	"github.com/tinyvector/tinyvector/internal/loglevel"
	"github.com/tinyvector/tinyvector/internal/transform"
)

// DefaultCapacity is the bounded channel size every inter-node edge
// gets unless overridden.
const DefaultCapacity = 1000

// Tap observes every event delivered to a sink, without being a
// ComponentOutput or participating in graph validation. A debug tap is
// mounted this way: read-only, outside the graph entirely.
type Tap interface {
	Observe(event.Event)
}

// Topology holds a validated graph plus the concrete drivers for every
// source and sink (transforms are already embedded in the graph, built
// eagerly at decode time).
type Topology struct {
	graph    *graph.Graph
	sources  map[component.Name]Source
	sinks    map[component.Name]Sink
	capacity int
	logger   *slog.Logger
	tap      Tap
}

// New returns a Topology ready to Start. g must have already passed
// Validate. sources and sinks must have one entry per name declared in
// g.Sources / g.Sinks.
func New(g *graph.Graph, sources map[component.Name]Source, sinks map[component.Name]Sink, logger *slog.Logger) *Topology {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topology{
		graph:    g,
		sources:  sources,
		sinks:    sinks,
		capacity: DefaultCapacity,
		logger:   logger,
	}
}

// WithCapacity overrides the bounded channel capacity (default
// DefaultCapacity) for every edge in this topology.
func (t *Topology) WithCapacity(capacity int) *Topology {
	t.capacity = capacity
	return t
}

// WithTap mounts an optional debug tap: every event delivered to every
// sink is additionally passed to tap.Observe before the sink sees it.
func (t *Topology) WithTap(tap Tap) *Topology {
	t.tap = tap
	return t
}

// Instance is a running topology: every node has been spawned as its
// own goroutine.
type Instance struct {
	wg *sync.WaitGroup
}

// Await blocks until every node's task has returned. Shutdown is
// implicit and cooperative (spec.md §4.5 phase 3): once every source's
// task returns, its Collector is closed, which cascades channel
// closure downstream until every task drains and exits. Individual
// task failures are logged as they occur, not returned here.
func (i *Instance) Await() {
	i.wg.Wait()
}

// wiring is the state built during phase 1.
type wiring struct {
	receivers  map[component.Name]chan event.Event
	collectors map[component.Name]*collector.Collector
}

func (t *Topology) wire() *wiring {
	w := &wiring{
		receivers:  make(map[component.Name]chan event.Event, len(t.graph.Transforms)+len(t.graph.Sinks)),
		collectors: make(map[component.Name]*collector.Collector, len(t.graph.Sources)+len(t.graph.Transforms)),
	}

	for name := range t.graph.Transforms {
		w.receivers[name] = make(chan event.Event, t.capacity)
	}
	for name := range t.graph.Sinks {
		w.receivers[name] = make(chan event.Event, t.capacity)
	}

	// Every source and every transform gets a Collector up front, even
	// with nothing registered yet, so Close() is always safe to call
	// from its owning task regardless of how many consumers it has.
	collectorOf := func(name component.Name) *collector.Collector {
		c, ok := w.collectors[name]
		if !ok {
			c = collector.New(t.logger.With("component", string(name)))
			w.collectors[name] = c
		}
		return c
	}
	for name := range t.graph.Sources {
		collectorOf(name)
	}
	for name := range t.graph.Transforms {
		collectorOf(name)
	}

	for name, cfg := range t.graph.Transforms {
		ch := w.receivers[name]
		for _, input := range cfg.Inputs {
			collectorOf(input.Component).AddOutput(input.Port, ch)
		}
	}
	for name, cfg := range t.graph.Sinks {
		ch := w.receivers[name]
		for _, input := range cfg.Inputs {
			collectorOf(input.Component).AddOutput(input.Port, ch)
		}
	}

	return w
}

// Start runs phases 1 (wiring) and 2 (spawn) and returns an Instance
// for the caller to Await. Every sink and every source is prepared
// before anything is spawned; a prepare() failure on any node aborts
// start-up entirely (nothing is spawned) and returns every such
// failure aggregated.
func (t *Topology) Start(ctx context.Context) (*Instance, error) {
	w := t.wire()

	preparedSinks, preparedSources, err := t.prepareAll(ctx)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup

	// Phase 2 — spawn, in order sinks -> transforms -> sources.
	for name, prepared := range preparedSinks {
		wg.Add(1)
		go t.runSink(&wg, name, t.graph.Sinks[name].Type, prepared, w.receivers[name])
	}
	for name, cfg := range t.graph.Transforms {
		wg.Add(1)
		go t.runTransform(&wg, name, cfg, w.receivers[name], w.collectors[name])
	}
	for name, prepared := range preparedSources {
		wg.Add(1)
		go t.runSource(&wg, name, t.graph.Sources[name].Type, prepared, w.collectors[name])
	}

	return &Instance{wg: &wg}, nil
}

func (t *Topology) prepareAll(ctx context.Context) (map[component.Name]PreparedSink, map[component.Name]PreparedSource, error) {
	var errs *multierror.Error

	preparedSinks := make(map[component.Name]PreparedSink, len(t.sinks))
	for name, driver := range t.sinks {
		prepared, err := driver.Prepare(ctx)
		if err != nil {
			errs = multierror.Append(errs, &StartingError{Component: name, Kind: "sink", Err: err})
			continue
		}
		preparedSinks[name] = prepared
	}

	preparedSources := make(map[component.Name]PreparedSource, len(t.sources))
	for name, driver := range t.sources {
		prepared, err := driver.Prepare(ctx)
		if err != nil {
			errs = multierror.Append(errs, &StartingError{Component: name, Kind: "source", Err: err})
			continue
		}
		preparedSources[name] = prepared
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, nil, err
	}
	return preparedSinks, preparedSources, nil
}

func (t *Topology) runSink(wg *sync.WaitGroup, name component.Name, flavor string, prepared PreparedSink, receiver <-chan event.Event) {
	defer wg.Done()
	logger := t.logger.With("component", string(name), "kind", "sink", "flavor", flavor)
	logger.Debug("task started")
	if t.tap != nil {
		receiver = tapped(receiver, t.tap)
	}
	if err := prepared.Execute(receiver); err != nil {
		logger.Error("task failed", "error", err)
		return
	}
	logger.Debug("task terminated")
}

// tapped interposes tap.Observe on every event flowing from receiver,
// without otherwise altering the stream seen by the sink.
func tapped(receiver <-chan event.Event, tap Tap) <-chan event.Event {
	out := make(chan event.Event, cap(receiver))
	go func() {
		defer close(out)
		for e := range receiver {
			tap.Observe(e)
			out <- e
		}
	}()
	return out
}

func (t *Topology) runSource(wg *sync.WaitGroup, name component.Name, flavor string, prepared PreparedSource, own *collector.Collector) {
	defer wg.Done()
	defer own.Close()
	logger := t.logger.With("component", string(name), "kind", "source", "flavor", flavor)
	logger.Debug("task started")
	if err := prepared.Execute(own); err != nil {
		logger.Error("task failed", "error", err)
		return
	}
	logger.Debug("task terminated")
}

func (t *Topology) runTransform(wg *sync.WaitGroup, name component.Name, cfg graph.TransformConfig, receiver <-chan event.Event, own *collector.Collector) {
	defer wg.Done()
	defer own.Close()
	logger := t.logger.With("component", string(name), "kind", "transform", "flavor", cfg.Type)
	logger.Debug("task started")
	for e := range receiver {
		logger.Log(context.Background(), loglevel.Trace, "received event")
		action := cfg.Transform.Handle(e)
		transform.Dispatch(own, action)
	}
	logger.Debug("task terminated")
}
