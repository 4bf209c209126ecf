package registry

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/variable"
)

// Validate performs a strict parity check between a model and the
// registered types: every process type must exist, every input must name
// an owned in or in-out variable holding numbers, and every binding must
// name a foreign reference.
func (r *Registry) Validate(ctx context.Context, model *config.Model) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	seen := make(map[string]struct{}, len(model.Processes))
	for _, p := range model.Processes {
		if _, dup := seen[p.Name]; dup {
			errs = append(errs, fmt.Sprintf("process '%s' is declared more than once", p.Name))
			continue
		}
		seen[p.Name] = struct{}{}

		t, ok := r.types[p.Type]
		if !ok {
			errs = append(errs, fmt.Sprintf("process '%s': unknown type '%s' (registered: %s)", p.Name, p.Type, strings.Join(r.Types(), ", ")))
			continue
		}
		decls := declarations(t)

		for _, name := range sortedNames(p.Inputs) {
			v, ok := decls[name]
			if !ok {
				errs = append(errs, fmt.Sprintf("process '%s': type '%s' has no variable '%s'", p.Name, p.Type, name))
				continue
			}
			if v.Kind != variable.Plain || v.Intent == variable.Out {
				errs = append(errs, fmt.Sprintf("process '%s': '%s' is a %s %s variable and cannot be given a value", p.Name, name, v.Kind, v.Intent))
				continue
			}
			if !isNumeric(p.Inputs[name].Type()) {
				errs = append(errs, fmt.Sprintf("process '%s', input '%s': expected a number or nested lists of numbers, got %s", p.Name, name, p.Inputs[name].Type().FriendlyName()))
			}
		}

		for _, name := range sortedNames(p.Bindings) {
			v, ok := decls[name]
			if !ok {
				errs = append(errs, fmt.Sprintf("process '%s': type '%s' has no variable '%s' to bind", p.Name, p.Type, name))
				continue
			}
			if v.Kind != variable.Foreign {
				errs = append(errs, fmt.Sprintf("process '%s': '%s' is a %s variable, only foreign variables can be bound", p.Name, name, v.Kind))
				continue
			}
			if _, err := variable.ParseRef(p.Bindings[name]); err != nil {
				errs = append(errs, fmt.Sprintf("process '%s', binding '%s': %v", p.Name, name, err))
			}
		}
		logger.Debug("Validated process against its type.", "process", p.Name, "type", p.Type)
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func declarations(t *ProcessType) map[string]variable.Var {
	vars := t.New().Variables()
	out := make(map[string]variable.Var, len(vars))
	for _, v := range vars {
		out[v.Name] = v
	}
	return out
}

// isNumeric reports whether ty is a number or an arbitrarily nested list or
// tuple of numbers.
func isNumeric(ty cty.Type) bool {
	switch {
	case ty == cty.Number:
		return true
	case ty.IsListType():
		return isNumeric(ty.ElementType())
	case ty.IsTupleType():
		for _, et := range ty.TupleElementTypes() {
			if !isNumeric(et) {
				return false
			}
		}
		return true
	}
	return false
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
