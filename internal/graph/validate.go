package graph

import (
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/tinyvector/tinyvector/internal/component"
)

type nodeKind int

const (
	kindSource nodeKind = iota
	kindTransform
	kindSink
)

type nodeInfo struct {
	kind      nodeKind
	hasOutput func(component.NamedOutput) bool // nil for sinks
	inputs    []component.Output               // nil for sources
}

func (n nodeInfo) consumesInputs() bool { return n.kind != kindSource }

// sourceHasOutput models every built-in source (random_logs, tcp_server,
// hostmetrics): each emits solely on its default output.
func sourceHasOutput(output component.NamedOutput) bool {
	return output.IsDefault()
}

func (g *Graph) nodes() map[component.Name]nodeInfo {
	nodes := make(map[component.Name]nodeInfo, len(g.Sources)+len(g.Transforms)+len(g.Sinks))
	for name := range g.Sources {
		nodes[name] = nodeInfo{kind: kindSource, hasOutput: sourceHasOutput}
	}
	for name, t := range g.Transforms {
		nodes[name] = nodeInfo{kind: kindTransform, hasOutput: t.Transform.HasOutput, inputs: t.Inputs}
	}
	for name, s := range g.Sinks {
		nodes[name] = nodeInfo{kind: kindSink, inputs: s.Inputs}
	}
	return nodes
}

// Validate runs the six static checks from §4.4 and collects every
// failure before returning, rather than failing fast on the first one.
func (g *Graph) Validate() error {
	var errs *multierror.Error

	g.checkMultipleUseOfInput(&errs)
	g.traverseBackward(&errs)

	return errs.ErrorOrNil()
}

// checkMultipleUseOfInput builds the union of every transform's and
// every sink's declared inputs and flags any ComponentOutput claimed by
// more than one consumer.
func (g *Graph) checkMultipleUseOfInput(errs **multierror.Error) {
	targets := map[string][]component.Name{}
	refs := map[string]component.Output{}

	record := func(consumer component.Name, input component.Output) {
		key := input.String()
		refs[key] = input
		targets[key] = append(targets[key], consumer)
	}
	for name, t := range g.Transforms {
		for _, input := range t.Inputs {
			record(name, input)
		}
	}
	for name, s := range g.Sinks {
		for _, input := range s.Inputs {
			record(name, input)
		}
	}

	keys := make([]string, 0, len(targets))
	for key := range targets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		consumers := targets[key]
		if len(consumers) <= 1 {
			continue
		}
		sorted := append([]component.Name(nil), consumers...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		*errs = multierror.Append(*errs, MultipleUseOfInputError{Input: refs[key], Targets: sorted})
	}
}

// pathSet tracks the nodes visited on the current backward walk from a
// sink; re-entering it marks a cycle.
type pathSet map[component.Name]struct{}

func (p pathSet) with(name component.Name) pathSet {
	out := make(pathSet, len(p)+1)
	for k := range p {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

func (p pathSet) sortedNames() []component.Name {
	out := make([]component.Name, 0, len(p))
	for k := range p {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type walkItem struct {
	output component.Output
	path   pathSet
}

// traverseBackward walks from every sink toward its sources, recording
// InputNotFound, OutputNotFound, NoInput, and CircularDependency as it
// goes, and OrphanComponent for every node never reached.
func (g *Graph) traverseBackward(errs **multierror.Error) {
	nodes := g.nodes()
	used := map[component.Name]struct{}{}

	var queue []walkItem
	sinkNames := make([]component.Name, 0, len(g.Sinks))
	for name := range g.Sinks {
		sinkNames = append(sinkNames, name)
	}
	sort.Slice(sinkNames, func(i, j int) bool { return sinkNames[i] < sinkNames[j] })
	for _, name := range sinkNames {
		sink := g.Sinks[name]
		if len(sink.Inputs) == 0 {
			*errs = multierror.Append(*errs, NoInputError{Name: name})
			continue
		}
		for _, input := range sink.Inputs {
			queue = append(queue, walkItem{output: input, path: pathSet{name: {}}})
		}
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		node, ok := nodes[item.output.Component]
		if !ok {
			*errs = multierror.Append(*errs, InputNotFoundError{Input: item.output})
			continue
		}
		if node.hasOutput == nil {
			// Referencing a sink as an input: sinks declare no outputs.
			*errs = multierror.Append(*errs, OutputNotFoundError{Name: item.output.Component, Output: item.output.Port})
			continue
		}
		if !node.hasOutput(item.output.Port) {
			*errs = multierror.Append(*errs, OutputNotFoundError{Name: item.output.Component, Output: item.output.Port})
			continue
		}

		if node.consumesInputs() {
			if len(node.inputs) == 0 {
				*errs = multierror.Append(*errs, NoInputError{Name: item.output.Component})
				continue
			}
			if _, already := item.path[item.output.Component]; already {
				*errs = multierror.Append(*errs, CircularDependencyError{
					Name: item.output.Component,
					Path: item.path.sortedNames(),
				})
				continue
			}
			nextPath := item.path.with(item.output.Component)
			for _, input := range node.inputs {
				queue = append(queue, walkItem{output: input, path: nextPath})
			}
		} else {
			used[item.output.Component] = struct{}{}
			for name := range item.path {
				used[name] = struct{}{}
			}
		}
	}

	names := make([]component.Name, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	for _, name := range names {
		if _, ok := used[name]; !ok {
			*errs = multierror.Append(*errs, OrphanComponentError{Name: name})
		}
	}
}
