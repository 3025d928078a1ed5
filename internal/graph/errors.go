package graph

import (
	"fmt"

	"github.com/tinyvector/tinyvector/internal/component"
)

// ValidationError is one of the six static checks in §4.4. A single
// Validate call may return many of these, aggregated via
// hashicorp/go-multierror.
type ValidationError interface {
	error
	isValidationError()
}

type MultipleUseOfInputError struct {
	Input   component.Output
	Targets []component.Name
}

func (e MultipleUseOfInputError) Error() string {
	return fmt.Sprintf("the same input %s is being used by multiple components %v", e.Input, e.Targets)
}
func (MultipleUseOfInputError) isValidationError() {}

type InputNotFoundError struct {
	Input component.Output
}

func (e InputNotFoundError) Error() string {
	return fmt.Sprintf("unable to find the specified input %s", e.Input)
}
func (InputNotFoundError) isValidationError() {}

type OutputNotFoundError struct {
	Name   component.Name
	Output component.NamedOutput
}

func (e OutputNotFoundError) Error() string {
	return fmt.Sprintf("unable to find output %s in the component %s", e.Output, e.Name)
}
func (OutputNotFoundError) isValidationError() {}

type NoInputError struct {
	Name component.Name
}

func (e NoInputError) Error() string {
	return fmt.Sprintf("component %s should have at least one input", e.Name)
}
func (NoInputError) isValidationError() {}

type OrphanComponentError struct {
	Name component.Name
}

func (e OrphanComponentError) Error() string {
	return fmt.Sprintf("component %s is not part of a route that goes from a source to a sink", e.Name)
}
func (OrphanComponentError) isValidationError() {}

type CircularDependencyError struct {
	Name component.Name
	Path []component.Name
}

func (e CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected in the path %v with %s", e.Path, e.Name)
}
func (CircularDependencyError) isValidationError() {}
