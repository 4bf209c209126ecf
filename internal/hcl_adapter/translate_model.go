// This file contains the logic for translating HCL schema structs into the
// format-agnostic configuration model defined in the config package.

package hcl_adapter

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/phydrago/internal/config"
	"github.com/vk/phydrago/internal/ctxlog"
)

// translateClock converts the HCL-specific clock schema into the agnostic model.
func (l *Loader) translateClock(c *Clock) (*config.Clock, error) {
	out := &config.Clock{Deltas: c.Deltas}
	if c.Steps != nil {
		out.Steps = *c.Steps
	}
	if c.DT != nil {
		out.DT = *c.DT
	}
	if c.DT != nil && len(c.Deltas) > 0 {
		return nil, fmt.Errorf("clock: dt and deltas are mutually exclusive")
	}
	return out, nil
}

// translateOutput converts the HCL-specific output schema into the agnostic model.
func (l *Loader) translateOutput(o *Output) *config.Output {
	return &config.Output{Path: o.Path, Format: o.Format, Record: o.Record}
}

// translateProcess converts the HCL-specific process schema into the
// agnostic model, evaluating every input to a constant value.
func (l *Loader) translateProcess(ctx context.Context, p *Process, file string) (*config.Process, error) {
	logger := ctxlog.FromContext(ctx).With("process_type", p.Type, "process_name", p.Name)
	logger.Debug("Translating HCL process to internal config model.")

	proc := &config.Process{
		Type:     p.Type,
		Name:     p.Name,
		Inputs:   make(map[string]cty.Value),
		Bindings: p.Bind,
		Source:   file,
	}
	if proc.Bindings == nil {
		proc.Bindings = make(map[string]string)
	}
	if p.Inputs == nil || p.Inputs.Body == nil {
		return proc, nil
	}

	attrs, diags := p.Inputs.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: inputs of process '%s': %w", file, p.Name, diags)
	}
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: input '%s' of process '%s': %w", file, name, p.Name, diags)
		}
		proc.Inputs[name] = val
	}
	logger.Debug("HCL process translated.", "inputs", len(proc.Inputs), "bindings", len(proc.Bindings))
	return proc, nil
}
