package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGraphConsumed is returned when Run is called on a graph that has
// already run.
var ErrGraphConsumed = errors.New("graph has already been run")

// StepComputationError wraps a failure raised inside a lifecycle callback.
// Step is 0 for failures during initialize.
type StepComputationError struct {
	Process string
	Phase   Phase
	Step    int
	Err     error
}

func (e *StepComputationError) Error() string {
	if e.Phase == PhaseInitialize {
		return fmt.Sprintf("process %q failed during %s: %v", e.Process, e.Phase, e.Err)
	}
	return fmt.Sprintf("process %q failed during %s of step %d: %v", e.Process, e.Phase, e.Step, e.Err)
}

func (e *StepComputationError) Unwrap() error { return e.Err }

// PhaseError means a callback tried an operation its phase does not allow.
type PhaseError struct {
	Process string
	Var     string
	Phase   Phase
	Op      string
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("process %q cannot %s %q during %s", e.Process, e.Op, e.Var, e.Phase)
}

// UndeclaredVariableError means a callback accessed a name its process
// never declared.
type UndeclaredVariableError struct {
	Process string
	Var     string
}

func (e *UndeclaredVariableError) Error() string {
	return fmt.Sprintf("process %q has no variable %q", e.Process, e.Var)
}

// MissingValueError means a variable was read before anything wrote it.
type MissingValueError struct {
	Process string
	Var     string
	// Source is the variable actually read, when it differs from Var.
	Source string
}

func (e *MissingValueError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("variable %q of process %q has no value yet (reads %s)", e.Var, e.Process, e.Source)
	}
	return fmt.Sprintf("variable %q of process %q has no value yet", e.Var, e.Process)
}

// MissingOutputError means a process finished RunStep without writing one
// of its outputs.
type MissingOutputError struct {
	Process string
	Var     string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("process %q did not compute output %q", e.Process, e.Var)
}

// ValueShapeError means a value's dims are not accepted by its declaration
// or disagree with an index size.
type ValueShapeError struct {
	Process string
	Var     string
	Dims    []string
	Reason  string
}

func (e *ValueShapeError) Error() string {
	return fmt.Sprintf("value of %q in process %q with dims (%s): %s",
		e.Var, e.Process, strings.Join(e.Dims, ", "), e.Reason)
}

// DuplicateIndexError means two index variables tried to create the same
// dimension.
type DuplicateIndexError struct {
	Dim   string
	Owner string
}

func (e *DuplicateIndexError) Error() string {
	return fmt.Sprintf("dimension %q is already indexed by process %q", e.Dim, e.Owner)
}

// InvalidClockError reports a clock that cannot drive a run.
type InvalidClockError struct {
	Reason string
}

func (e *InvalidClockError) Error() string {
	return "invalid clock: " + e.Reason
}
