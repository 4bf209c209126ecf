package engine

import (
	"fmt"
	"math"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/resolver"
	"github.com/vk/phydrago/internal/variable"
)

// Phase is a stage of the lifecycle.
type Phase int

const (
	PhaseInitialize Phase = iota
	PhaseRunStep
	PhaseFinalizeStep
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "initialize"
	case PhaseRunStep:
		return "run_step"
	case PhaseFinalizeStep:
		return "finalize_step"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// scope is the process.Scope handed to one callback.
type scope struct {
	g     *Graph
	proc  string
	phase Phase
	step  int
}

var _ process.Scope = (*scope)(nil)

func (s *scope) Process() string { return s.proc }
func (s *scope) Step() int { return s.step }

func (s *scope) lookup(name string) (variable.Key, variable.Var, error) {
	key := variable.Key{Process: s.proc, Var: name}
	v, ok := s.g.vars[key]
	if !ok {
		return key, v, &UndeclaredVariableError{Process: s.proc, Var: name}
	}
	return key, v, nil
}

func (s *scope) Value(name string) (array.Array, error) {
	key, v, err := s.lookup(name)
	if err != nil {
		return array.Array{}, err
	}
	if s.phase == PhaseFinalizeStep && (v.Kind == variable.Foreign || v.Kind == variable.Group) {
		return array.Array{}, &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: fmt.Sprintf("read %s variable", v.Kind)}
	}

	src := s.g.plan.Sources[key]
	switch src.Kind {
	case resolver.Aggregated:
		return s.g.groups.Aggregate(src.Group, s.g.zeroFor(src.Shape))
	case resolver.Bound:
		value, ok := s.g.state[src.Ref]
		if !ok {
			return array.Array{}, &MissingValueError{Process: s.proc, Var: name, Source: src.Ref.String()}
		}
		return value, nil
	}
	value, ok := s.g.state[key]
	if !ok {
		return array.Array{}, &MissingValueError{Process: s.proc, Var: name}
	}
	return value, nil
}

func (s *scope) Float(name string) (float64, error) {
	v, err := s.Value(name)
	if err != nil {
		return 0, err
	}
	f, err := v.Float()
	if err != nil {
		return 0, fmt.Errorf("variable %q: %w", name, err)
	}
	return f, nil
}

func (s *scope) Int(name string) (int, error) {
	f, err := s.Float(name)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("variable %q: %v is not a whole number", name, f)
	}
	return int(f), nil
}

func (s *scope) Set(name string, value array.Array) error {
	key, v, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v.Kind != variable.Plain {
		return &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: fmt.Sprintf("write %s variable", v.Kind)}
	}
	switch v.Intent {
	case variable.Out:
		if s.phase == PhaseFinalizeStep {
			return &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: "write output"}
		}
	case variable.InOut:
		if s.phase == PhaseRunStep {
			return &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: "write state"}
		}
	default:
		return &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: "write input"}
	}

	if err := checkValue(key, v, value); err != nil {
		return err
	}
	if err := s.g.checkIndexed(key, value); err != nil {
		return err
	}

	s.g.state[key] = value
	s.g.written[key] = s.step
	for _, name := range v.Groups {
		s.g.groups.Contribute(name, key, value)
	}
	return nil
}

func (s *scope) SetIndex(name string, size int) error {
	key, v, err := s.lookup(name)
	if err != nil {
		return err
	}
	if v.Kind != variable.Index {
		return fmt.Errorf("variable %q of process %q is not a grid index", name, s.proc)
	}
	if s.phase != PhaseInitialize {
		return &PhaseError{Process: s.proc, Var: name, Phase: s.phase, Op: "set index"}
	}
	if size < 0 {
		return fmt.Errorf("index %q: negative size %d", name, size)
	}
	if info, ok := s.g.dims[v.Dim]; ok {
		return &DuplicateIndexError{Dim: v.Dim, Owner: info.owner}
	}

	idx, err := array.Range(v.Dim, size)
	if err != nil {
		return err
	}
	s.g.dims[v.Dim] = dimInfo{size: size, owner: s.proc}
	s.g.state[key] = idx
	s.g.written[key] = s.step
	return nil
}

func (s *scope) DimSize(dim string) (int, bool) {
	info, ok := s.g.dims[dim]
	return info.size, ok
}

// checkIndexed verifies that every indexed dim of value has the index size.
func (g *Graph) checkIndexed(key variable.Key, value array.Array) error {
	for _, d := range value.Dims() {
		info, ok := g.dims[d]
		if !ok {
			continue
		}
		if n, _ := value.Len(d); n != info.size {
			return &ValueShapeError{
				Process: key.Process, Var: key.Var, Dims: value.Dims(),
				Reason: fmt.Sprintf("dimension %q has size %d, index %q has %d", d, n, info.owner, info.size),
			}
		}
	}
	return nil
}

// zeroFor returns the zero of a group consumer's shape: the first accepted
// dims alternative whose dimensions are all indexed, else a scalar.
func (g *Graph) zeroFor(key variable.Key) array.Array {
	v := g.vars[key]
	if v.AnyDims {
		return array.Scalar(0)
	}
	for _, alt := range v.Dims {
		shape := make([]int, len(alt))
		complete := true
		for i, d := range alt {
			info, ok := g.dims[d]
			if !ok {
				complete = false
				break
			}
			shape[i] = info.size
		}
		if !complete {
			continue
		}
		zero, err := array.Zeros(alt, shape)
		if err == nil {
			return zero
		}
	}
	return array.Scalar(0)
}
