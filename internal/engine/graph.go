package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/group"
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/resolver"
	"github.com/vk/phydrago/internal/variable"
)

// Instance is one configured process in a model.
type Instance struct {
	Name    string
	Process process.Process
	// Inputs supplies external values by variable name.
	Inputs map[string]array.Array
	// Bindings rebinds foreign variables to another target.
	Bindings map[string]variable.Ref
}

// Config is the full description of a model to build.
type Config struct {
	Instances []Instance
}

type status int

const (
	statusBuilt status = iota
	statusRunning
	statusDone
	statusFailed
)

// dimInfo is a grid dimension created by an index variable.
type dimInfo struct {
	size  int
	owner string
}

// Graph is a resolved, seeded model ready to run. Its topology never
// changes after Build; its state is mutated only by Run.
type Graph struct {
	plan      *resolver.Plan
	processes map[string]process.Process
	vars      map[variable.Key]variable.Var

	state   map[variable.Key]array.Array
	written map[variable.Key]int
	dims    map[string]dimInfo
	groups  *group.Table
	status  status
}

// Build declares, resolves and seeds a model. It never returns a partial
// graph.
func Build(ctx context.Context, cfg Config) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: declaring processes.", "count", len(cfg.Instances))

	reg := variable.NewRegistry()
	g := &Graph{
		processes: make(map[string]process.Process, len(cfg.Instances)),
		vars:      make(map[variable.Key]variable.Var),
		state:     make(map[variable.Key]array.Array),
		written:   make(map[variable.Key]int),
		dims:      make(map[string]dimInfo),
		groups:    group.NewTable(),
	}

	var errs []error
	supplied := make(map[variable.Key]bool)
	for _, inst := range cfg.Instances {
		if inst.Process == nil {
			errs = append(errs, fmt.Errorf("process %q has no implementation", inst.Name))
			continue
		}
		if err := reg.AddProcess(inst.Name); err != nil {
			errs = append(errs, err)
			continue
		}
		g.processes[inst.Name] = inst.Process

		decls, err := applyBindings(inst)
		if err != nil {
			errs = append(errs, err)
		}
		for _, v := range decls {
			if err := reg.Declare(inst.Name, v); err != nil {
				errs = append(errs, err)
				continue
			}
			g.vars[variable.Key{Process: inst.Name, Var: v.Name}] = v
		}
		for name := range inst.Inputs {
			supplied[variable.Key{Process: inst.Name, Var: name}] = true
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	plan, err := resolver.Resolve(ctx, reg, supplied)
	if err != nil {
		return nil, err
	}
	g.plan = plan

	for _, inst := range cfg.Instances {
		for _, v := range reg.Vars(inst.Name) {
			key := variable.Key{Process: inst.Name, Var: v.Name}
			switch plan.Sources[key].Kind {
			case resolver.External:
				value := inst.Inputs[v.Name]
				if err := checkValue(key, v, value); err != nil {
					errs = append(errs, err)
					continue
				}
				g.state[key] = value
			case resolver.Default:
				g.state[key] = *v.Default
			}
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	logger.Debug("Build: graph ready.", "order", plan.Order, "seeded", len(g.state))
	return g, nil
}

// applyBindings returns the instance's declarations with configured
// foreign targets applied.
func applyBindings(inst Instance) ([]variable.Var, error) {
	decls := inst.Process.Variables()
	if len(inst.Bindings) == 0 {
		return decls, nil
	}

	out := make([]variable.Var, len(decls))
	copy(out, decls)
	used := make(map[string]bool, len(inst.Bindings))
	var errs []error
	for i, v := range out {
		ref, ok := inst.Bindings[v.Name]
		if !ok {
			continue
		}
		used[v.Name] = true
		if v.Kind != variable.Foreign {
			errs = append(errs, &variable.InvalidDeclarationError{
				Process: inst.Name, Var: v.Name, Reason: fmt.Sprintf("cannot bind a %s variable", v.Kind),
			})
			continue
		}
		out[i].Target = ref
	}
	for _, name := range sortedKeys(inst.Bindings) {
		if !used[name] {
			errs = append(errs, &resolver.UnknownVariableError{Process: inst.Name, Var: name})
		}
	}
	return out, errors.Join(errs...)
}

// checkValue validates an array against its declaration.
func checkValue(key variable.Key, v variable.Var, value array.Array) error {
	if !value.Valid() {
		return &ValueShapeError{Process: key.Process, Var: key.Var, Reason: "value is empty"}
	}
	if !v.AcceptsDims(value.Dims()) {
		return &ValueShapeError{
			Process: key.Process, Var: key.Var, Dims: value.Dims(),
			Reason: fmt.Sprintf("dims not accepted, want one of %s", formatAlternatives(v.Dims)),
		}
	}
	return nil
}

// Plan returns the resolved execution plan.
func (g *Graph) Plan() *resolver.Plan { return g.plan }

// Order returns the execution order.
func (g *Graph) Order() []string { return slices.Clone(g.plan.Order) }

// Get returns the handle of a process instance.
func (g *Graph) Get(name string) (Handle, bool) {
	if _, ok := g.processes[name]; !ok {
		return Handle{}, false
	}
	return Handle{g: g, name: name}, true
}

// Snapshot copies the current model state.
func (g *Graph) Snapshot() Snapshot {
	return newSnapshot(g.state)
}

// Handle is a read-only view of one process instance.
type Handle struct {
	g    *Graph
	name string
}

// Name is the instance name.
func (h Handle) Name() string { return h.name }

// Process returns the instance implementation.
func (h Handle) Process() process.Process { return h.g.processes[h.name] }

// Variables returns the declarations as bound in this graph.
func (h Handle) Variables() []variable.Var {
	return h.g.plan.Registry.Vars(h.name)
}

// Value returns the stored value of one of the instance's variables, or
// the bound value for foreign variables.
func (h Handle) Value(name string) (array.Array, bool) {
	key := variable.Key{Process: h.name, Var: name}
	if src, ok := h.g.plan.Sources[key]; ok && src.Kind == resolver.Bound {
		key = src.Ref
	}
	v, ok := h.g.state[key]
	return v, ok
}

func formatAlternatives(alts [][]string) string {
	if len(alts) == 0 {
		return "()"
	}
	parts := make([]string, len(alts))
	for i, alt := range alts {
		parts[i] = "(" + strings.Join(alt, ", ") + ")"
	}
	return strings.Join(parts, ", ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
