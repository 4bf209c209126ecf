package app

import (
	"context"
	"fmt"

	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/engine"
	"github.com/vk/phydrago/internal/output"
)

// Run executes the loaded model: it builds the process graph, runs it over
// the configured clock and writes the results.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.cfg.HealthcheckPort > 0 {
		a.startHealthcheckServer(ctx, a.cfg.HealthcheckPort)
		defer a.closeHealthcheckServer(ctx)
	}

	instances, err := a.registry.Instantiate(ctx, a.model, a.converter)
	if err != nil {
		return fmt.Errorf("failed to instantiate processes: %w", err)
	}

	a.logger.Debug("Building process graph from config model...")
	g, err := engine.Build(ctx, engine.Config{Instances: instances})
	if err != nil {
		return fmt.Errorf("failed to build process graph: %w", err)
	}
	a.logger.Info("Process graph built.", "processes", len(instances), "order", g.Order())

	if a.cfg.Graph != "" {
		return a.printGraph(g)
	}

	var rec *output.Recorder
	observers := []engine.Observer{a.collector}
	if a.model.Output != nil && len(a.model.Output.Record) > 0 {
		rec, err = output.NewRecorder(a.model.Output.Record...)
		if err != nil {
			return fmt.Errorf("invalid output record list: %w", err)
		}
		observers = append(observers, rec)
	}

	res, err := engine.Run(ctx, g, a.clock(), observers...)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	if rec != nil {
		if err := rec.Err(); err != nil {
			a.logger.Warn("Some recorded variables had no value.", "error", err)
		}
	}

	path, format, err := a.destination()
	if err != nil {
		return err
	}
	if err := output.WriteFile(path, format, output.NewDocument(res, rec), a.resultW); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	a.logger.Debug("Results written.", "path", path, "format", format)

	a.logger.Debug("App.Run method finished.")
	return nil
}

// clock merges the model's clock with the command-line overrides. A model
// without a clock block runs a single step of length 1.
func (a *App) clock() engine.Clock {
	clock := engine.Clock{Steps: 1, DT: 1}
	if c := a.model.Clock; c != nil {
		clock = engine.Clock{Steps: c.Steps, DT: c.DT, Deltas: c.Deltas}
	}
	if a.cfg.DT > 0 {
		clock.DT = a.cfg.DT
		clock.Deltas = nil
	}
	if a.cfg.Steps > 0 {
		clock.Steps = a.cfg.Steps
	}
	return clock
}

// destination resolves where results go. Flags win over the output block;
// the default is YAML on stdout.
func (a *App) destination() (string, output.Format, error) {
	path, name := "-", ""
	if o := a.model.Output; o != nil {
		if o.Path != "" {
			path = o.Path
		}
		name = o.Format
	}
	if a.cfg.OutputPath != "" {
		path = a.cfg.OutputPath
	}
	if a.cfg.OutputFormat != "" {
		name = a.cfg.OutputFormat
	}
	format, err := output.ParseFormat(name)
	if err != nil {
		return "", "", err
	}
	return path, format, nil
}

func (a *App) printGraph(g *engine.Graph) error {
	var text string
	switch a.cfg.Graph {
	case "dot":
		text = g.Plan().Graph.DOT()
	case "mermaid":
		text = g.Plan().Graph.Mermaid()
	default:
		return fmt.Errorf("unknown graph format %q", a.cfg.Graph)
	}
	_, err := fmt.Fprintln(a.resultW, text)
	return err
}
