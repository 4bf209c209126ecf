// Package variable holds the declarative description of process variables:
// their intent, their kind (owned, foreign, group or index), the groups they
// produce into and the dimensions they accept. The Registry records these
// declarations per process instance and is the read-only input to the
// dependency resolver.
package variable

import (
	"fmt"
	"strings"

	"github.com/vk/phydrago/internal/array"
)

// Intent states how a process uses a variable.
type Intent int

const (
	// In is read by the process; supplied externally or bound to another process.
	In Intent = iota + 1
	// Out is recomputed by the process every step.
	Out
	// InOut is state persisted across steps and updated by its owner.
	InOut
)

// ParseIntent maps the textual intents "in", "out" and "inout".
func ParseIntent(s string) (Intent, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in":
		return In, nil
	case "out":
		return Out, nil
	case "inout":
		return InOut, nil
	}
	return 0, &InvalidIntentError{Value: s}
}

// Valid reports whether i is one of In, Out or InOut.
func (i Intent) Valid() bool {
	return i == In || i == Out || i == InOut
}

func (i Intent) String() string {
	switch i {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	}
	return fmt.Sprintf("Intent(%d)", int(i))
}

// Kind distinguishes owned variables from bindings and grid indexes.
type Kind int

const (
	Plain Kind = iota
	Foreign
	Group
	Index
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Foreign:
		return "foreign"
	case Group:
		return "group"
	case Index:
		return "index"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Ref names one variable of one process instance.
type Ref struct {
	Process string
	Var     string
}

// ParseRef parses "process.var".
func ParseRef(s string) (Ref, error) {
	proc, name, ok := strings.Cut(s, ".")
	if !ok || proc == "" || name == "" || strings.Contains(name, ".") {
		return Ref{}, fmt.Errorf("invalid variable reference %q: want \"process.variable\"", s)
	}
	return Ref{Process: proc, Var: name}, nil
}

func (r Ref) String() string { return r.Process + "." + r.Var }

// Key identifies a declared variable in the model state.
type Key = Ref

// Var is a single variable declaration.
type Var struct {
	Name        string
	Kind        Kind
	Intent      Intent
	Description string

	// Groups lists the groups an Out or InOut variable contributes to.
	Groups []string
	// Dims lists the accepted dimension alternatives. An empty entry
	// accepts a scalar. No alternatives means scalar only, unless AnyDims.
	Dims    [][]string
	AnyDims bool
	// Default resolves an In or InOut variable without an external value.
	Default *array.Array

	// Target is the bound variable of a Foreign declaration.
	Target Ref
	// GroupName is the group aggregated by a Group declaration.
	GroupName string
	// Optional lets a Group declaration resolve with no producers.
	Optional bool
	// Dim is the dimension a grid Index declaration creates.
	Dim string
}

// AcceptsDims reports whether an array with the given dims may be stored
// in v.
func (v Var) AcceptsDims(dims []string) bool {
	if v.AnyDims {
		return true
	}
	if len(v.Dims) == 0 {
		return len(dims) == 0
	}
	for _, alt := range v.Dims {
		if equalDims(alt, dims) {
			return true
		}
	}
	return false
}

// DimsForRank returns the first accepted dims alternative of the given rank.
func (v Var) DimsForRank(rank int) ([]string, bool) {
	if rank == 0 && len(v.Dims) == 0 {
		return nil, true
	}
	for _, alt := range v.Dims {
		if len(alt) == rank {
			return alt, true
		}
	}
	return nil, false
}

func equalDims(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
