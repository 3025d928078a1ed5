// Package transform implements the six built-in transforms
// (add_fields, remove_fields, regex_parser, filter, route, broadcast)
// and the condition-language-driven dispatch the topology runtime
// wraps around every one of them.
package transform

import (
	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

// ActionKind discriminates what the topology runtime should do with a
// transform's output.
type ActionKind int

const (
	// ActionNone means the event is dropped by the transform itself
	// (e.g. a non-matching regex_parser leaves the event unchanged, so
	// this is never reached by the built-ins below, but the action
	// shape supports transforms that intentionally drop).
	ActionNone ActionKind = iota
	// ActionEmit sends Event to the single named Output.
	ActionEmit
	// ActionEmitAll clones Event to every connected output (broadcast).
	ActionEmitAll
)

// Action is the result of applying a transform to one event.
type Action struct {
	Kind   ActionKind
	Output component.NamedOutput
	Event  event.Event
}

func NoAction() Action { return Action{Kind: ActionNone} }

func EmitTo(output component.NamedOutput, e event.Event) Action {
	return Action{Kind: ActionEmit, Output: output, Event: e}
}

func EmitAll(e event.Event) Action {
	return Action{Kind: ActionEmitAll, Event: e}
}

// Transform is a pure function from event to Action. has_output is a
// function of the transform's own configuration, never a fixed set —
// per spec.md §9's second Open Question.
type Transform interface {
	Handle(e event.Event) Action
	HasOutput(output component.NamedOutput) bool
}

// Dispatcher is the minimal surface the topology runtime needs to
// route a transform's Action through a node's fan-out collector.
type Dispatcher interface {
	SendNamed(output component.NamedOutput, e event.Event)
	SendAll(e event.Event)
}

// Dispatch forwards a over dispatcher, matching spec.md §4.3's
// runtime-wraps-a-pure-function description.
func Dispatch(dispatcher Dispatcher, a Action) {
	switch a.Kind {
	case ActionNone:
	case ActionEmit:
		dispatcher.SendNamed(a.Output, a.Event)
	case ActionEmitAll:
		dispatcher.SendAll(a.Event)
	}
}

func droppedOutput() component.NamedOutput {
	out, err := component.ParseNamedOutput("dropped")
	if err != nil {
		panic(err) // "dropped" is always a valid component name
	}
	return out
}
