// Package resolver turns a registry of variable declarations into an
// execution plan: every input is bound to exactly one source, and process
// instances are ordered so that foreign-reference targets computed during a
// step and every group producer precede the processes reading them.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/dag"
	"github.com/vk/phydrago/internal/variable"
)

// SourceKind says where a variable's value comes from.
type SourceKind int

const (
	// Computed variables are written by their owning process.
	Computed SourceKind = iota
	// External variables are seeded from a supplied value.
	External
	// Default variables are seeded from their declared default.
	Default
	// Bound variables read another process's variable.
	Bound
	// Aggregated variables read the current-step sum of a group.
	Aggregated
)

func (k SourceKind) String() string {
	switch k {
	case Computed:
		return "computed"
	case External:
		return "external"
	case Default:
		return "default"
	case Bound:
		return "foreign"
	case Aggregated:
		return "group"
	}
	return fmt.Sprintf("SourceKind(%d)", int(k))
}

// Source is the resolved binding of one variable.
type Source struct {
	Kind SourceKind
	// Ref is the variable actually read for Bound sources, after following
	// chains of foreign references.
	Ref variable.Key
	// Group is the aggregated group for Aggregated sources.
	Group string
	// Shape is the declaration whose dims shape an empty group aggregate.
	Shape variable.Key
}

// Plan is the resolved, ordered description of a model run.
type Plan struct {
	Registry *variable.Registry
	Graph    *dag.Graph
	// Order is the execution order used for every lifecycle phase.
	Order   []string
	Sources map[variable.Key]Source
	// Producers lists, per group, the contributing variables in declaration order.
	Producers map[string][]variable.Key

	// refs has an edge for every foreign reference whatever the target's
	// intent. It only detects cycles and never orders.
	refs *dag.Graph
}

// Resolve binds every declared variable and orders the processes. supplied
// lists the variables that have an external value. It never returns a
// partial plan: any failure yields a nil plan.
func Resolve(ctx context.Context, reg *variable.Registry, supplied map[variable.Key]bool) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolve: starting.", "processes", len(reg.Processes()), "supplied", len(supplied))

	if err := checkSupplied(reg, supplied); err != nil {
		return nil, err
	}

	g, refs := dag.New(), dag.New()
	for _, p := range reg.Processes() {
		g.AddNode(p)
		refs.AddNode(p)
	}

	plan := &Plan{
		Registry:  reg,
		Graph:     g,
		refs:      refs,
		Sources:   make(map[variable.Key]Source),
		Producers: make(map[string][]variable.Key),
	}
	for _, name := range reg.Groups() {
		plan.Producers[name] = reg.Producers(name)
	}

	var errs []error
	for _, p := range reg.Processes() {
		for _, v := range reg.Vars(p) {
			key := variable.Key{Process: p, Var: v.Name}
			src, err := bind(plan, key, v, supplied)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			plan.Sources[key] = src
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	logger.Debug("Resolve: all variables bound.", "bindings", len(plan.Sources))

	var cycleErr *dag.CycleError
	if err := refs.DetectCycles(); errors.As(err, &cycleErr) {
		return nil, &CyclicDependencyError{Processes: cycleErr.Path}
	}

	order, err := g.TopologicalSort()
	if err != nil {
		if errors.As(err, &cycleErr) {
			return nil, &CyclicDependencyError{Processes: cycleErr.Path}
		}
		return nil, err
	}
	plan.Order = order
	logger.Debug("Resolve: execution order computed.", "order", order)
	return plan, nil
}

func checkSupplied(reg *variable.Registry, supplied map[variable.Key]bool) error {
	keys := make([]variable.Key, 0, len(supplied))
	for k, ok := range supplied {
		if ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := reg.Position(keys[i].Process), reg.Position(keys[j].Process)
		if pi != pj {
			return pi < pj
		}
		return keys[i].Var < keys[j].Var
	})

	var errs []error
	for _, k := range keys {
		v, ok := reg.Lookup(k)
		if !ok {
			errs = append(errs, &UnknownVariableError{Process: k.Process, Var: k.Var})
			continue
		}
		switch {
		case v.Kind == variable.Foreign:
			errs = append(errs, &AmbiguousInputError{Process: k.Process, Var: k.Var, Reason: "is bound to " + v.Target.String()})
		case v.Kind == variable.Group:
			errs = append(errs, &AmbiguousInputError{Process: k.Process, Var: k.Var, Reason: fmt.Sprintf("is bound to group %q", v.GroupName)})
		case v.Intent == variable.Out:
			errs = append(errs, &AmbiguousInputError{Process: k.Process, Var: k.Var, Reason: "is computed by the process"})
		}
	}
	return errors.Join(errs...)
}

func bind(plan *Plan, key variable.Key, v variable.Var, supplied map[variable.Key]bool) (Source, error) {
	switch v.Kind {
	case variable.Foreign:
		return bindForeign(plan, key, v, supplied)
	case variable.Group:
		return bindGroup(plan, key, key, v)
	case variable.Index:
		return Source{Kind: Computed}, nil
	}

	if v.Intent == variable.Out {
		return Source{Kind: Computed}, nil
	}
	if supplied[key] {
		return Source{Kind: External}, nil
	}
	if v.Default != nil {
		return Source{Kind: Default}, nil
	}
	return Source{}, &UnresolvedInputError{Process: key.Process, Var: key.Var}
}

// bindForeign follows the reference chain to the variable that actually
// holds the value. Only a target computed during the step (intent out)
// orders the referrer after its owner; in-out state is committed in the
// finalize phase, so reading it never depends on execution order. Every
// reference still counts towards cycle detection.
func bindForeign(plan *Plan, key variable.Key, v variable.Var, supplied map[variable.Key]bool) (Source, error) {
	reg := plan.Registry
	if v.Target.Process != key.Process && reg.HasProcess(v.Target.Process) {
		if err := plan.refs.AddEdge(v.Target.Process, key.Process, "foreign "+v.Target.String()); err != nil {
			return Source{}, err
		}
	}

	visited := map[variable.Key]bool{key: true}
	path := []string{key.Process}
	ref := v.Target
	for {
		if ref.Process == key.Process {
			if len(path) > 1 {
				return Source{}, &CyclicDependencyError{Processes: append(path, ref.Process)}
			}
			return Source{}, &MissingReferenceError{Process: key.Process, Var: key.Var, Target: ref.String(), Reason: "a process cannot reference its own variables"}
		}
		if !reg.HasProcess(ref.Process) {
			return Source{}, &MissingReferenceError{Process: key.Process, Var: key.Var, Target: ref.String(), Reason: "no such process"}
		}
		target, ok := reg.Lookup(ref)
		if !ok {
			return Source{}, &MissingReferenceError{Process: key.Process, Var: key.Var, Target: ref.String(), Reason: "no such variable"}
		}
		if visited[ref] {
			return Source{}, &CyclicDependencyError{Processes: append(path, ref.Process)}
		}
		visited[ref] = true
		path = append(path, ref.Process)

		switch target.Kind {
		case variable.Foreign:
			ref = target.Target
			continue
		case variable.Group:
			return bindGroup(plan, key, ref, target)
		}

		if target.Intent == variable.Out {
			if err := plan.Graph.AddEdge(ref.Process, key.Process, "foreign "+ref.String()); err != nil {
				return Source{}, err
			}
		} else if !supplied[ref] && target.Default == nil {
			return Source{}, &UnresolvedInputError{Process: ref.Process, Var: ref.Var}
		}
		return Source{Kind: Bound, Ref: ref}, nil
	}
}

func bindGroup(plan *Plan, key, shape variable.Key, v variable.Var) (Source, error) {
	producers := plan.Producers[v.GroupName]
	if len(producers) == 0 && !v.Optional {
		return Source{}, &UnresolvedInputError{Process: key.Process, Var: key.Var, Group: v.GroupName}
	}
	for _, p := range producers {
		if p.Process == key.Process {
			return Source{}, &CyclicDependencyError{Processes: []string{key.Process, key.Process}}
		}
		if err := plan.Graph.AddEdge(p.Process, key.Process, "group "+v.GroupName); err != nil {
			return Source{}, err
		}
	}
	return Source{Kind: Aggregated, Group: v.GroupName, Shape: shape}, nil
}

// Position returns the index of process in the execution order, or -1.
func (p *Plan) Position(process string) int {
	for i, name := range p.Order {
		if name == process {
			return i
		}
	}
	return -1
}
