// Package process defines the contract between the step engine and the
// model's processes.
//
// A process declares its variables once and then takes part in the
// lifecycle through optional capabilities: Initializer runs once before the
// first step, Stepper computes outputs in the first phase of every step and
// Finalizer commits the process's own pending state updates in the second
// phase. A process implements only the capabilities it needs.
//
// Shared behaviour is offered as plain helper functions (CommitDelta,
// SumFluxes) rather than through embedding.
package process

import (
	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/variable"
)

// Process is a unit of the simulation. Variables must return the same
// declarations every time it is called.
type Process interface {
	Variables() []variable.Var
}

// Initializer is implemented by processes that set grid indexes, zeroed
// accumulators or derived constants before the first step.
type Initializer interface {
	Initialize(s Scope) error
}

// Stepper is implemented by processes that recompute outputs every step.
type Stepper interface {
	RunStep(s Scope, dt float64) error
}

// Finalizer is implemented by processes that commit state at the end of
// every step.
type Finalizer interface {
	FinalizeStep(s Scope) error
}

// Scope is the view a lifecycle callback has of the model state. It is
// bound to one process and one phase; reads resolve through the declared
// bindings and writes are limited to what the phase allows.
type Scope interface {
	// Process is the name of the process instance the scope is bound to.
	Process() string
	// Step is the 1-based step index, or 0 during initialize.
	Step() int

	// Value reads a declared variable: owned values, foreign bindings and
	// group aggregates alike.
	Value(name string) (array.Array, error)
	// Float reads a declared scalar variable.
	Float(name string) (float64, error)
	// Int reads a declared scalar variable holding a whole number.
	Int(name string) (int, error)

	// Set writes an owned out or in-out variable.
	Set(name string, v array.Array) error
	// SetIndex creates the grid index declared as name with size entries.
	SetIndex(name string, size int) error
	// DimSize returns the size of a grid dimension once it is indexed.
	DimSize(dim string) (int, bool)
}
