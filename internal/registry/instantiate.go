package registry

import (
	"context"
	"fmt"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/engine"
	"github.com/vk/phydrago/internal/variable"
)

// Instantiate validates the model and creates one engine instance per
// configured process, converting its inputs with conv.
func (r *Registry) Instantiate(ctx context.Context, model *config.Model, conv config.Converter) ([]engine.Instance, error) {
	if err := r.Validate(ctx, model); err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)

	instances := make([]engine.Instance, 0, len(model.Processes))
	for _, p := range model.Processes {
		t := r.types[p.Type]
		proc := t.New()
		decls := make(map[string]variable.Var)
		for _, v := range proc.Variables() {
			decls[v.Name] = v
		}

		inst := engine.Instance{
			Name:     p.Name,
			Process:  proc,
			Inputs:   make(map[string]array.Array, len(p.Inputs)),
			Bindings: make(map[string]variable.Ref, len(p.Bindings)),
		}
		for _, name := range sortedNames(p.Inputs) {
			value, err := conv.ToArray(p.Inputs[name], decls[name])
			if err != nil {
				return nil, fmt.Errorf("process '%s', input '%s': %w", p.Name, name, err)
			}
			inst.Inputs[name] = value
		}
		for name, target := range p.Bindings {
			ref, err := variable.ParseRef(target)
			if err != nil {
				return nil, fmt.Errorf("process '%s', binding '%s': %w", p.Name, name, err)
			}
			inst.Bindings[name] = ref
		}

		logger.Debug("Instantiated process.", "process", p.Name, "type", p.Type, "inputs", len(inst.Inputs), "bindings", len(inst.Bindings))
		instances = append(instances, inst)
	}
	return instances, nil
}
