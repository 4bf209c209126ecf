package resolver

import (
	"fmt"
	"strings"
)

// CyclicDependencyError means no execution order exists. Processes lists
// one cycle, starting and ending with the same process.
type CyclicDependencyError struct {
	Processes []string
}

func (e *CyclicDependencyError) Error() string {
	return "cyclic dependency between processes: " + strings.Join(e.Processes, " -> ")
}

// UnresolvedInputError means an input has no external value, no default and
// no binding, or a required group has no producers.
type UnresolvedInputError struct {
	Process string
	Var     string
	Group   string
}

func (e *UnresolvedInputError) Error() string {
	if e.Group != "" {
		return fmt.Sprintf("unresolved input %q of process %q: group %q has no producers", e.Var, e.Process, e.Group)
	}
	return fmt.Sprintf("unresolved input %q of process %q: no value supplied and no default", e.Var, e.Process)
}

// AmbiguousInputError means an external value was supplied for a variable
// that already has a source.
type AmbiguousInputError struct {
	Process string
	Var     string
	Reason  string
}

func (e *AmbiguousInputError) Error() string {
	return fmt.Sprintf("value supplied for variable %q of process %q, which %s", e.Var, e.Process, e.Reason)
}

// MissingReferenceError means a foreign reference points at a process or
// variable that does not exist in the graph.
type MissingReferenceError struct {
	Process string
	Var     string
	Target  string
	Reason  string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("foreign reference %q of process %q to %s: %s", e.Var, e.Process, e.Target, e.Reason)
}

// UnknownVariableError means an external value names a variable nobody declared.
type UnknownVariableError struct {
	Process string
	Var     string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("value supplied for undeclared variable %q of process %q", e.Var, e.Process)
}
