package engine

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/variable"
)

// Clock drives the steps of a run: either a fixed DT for Steps steps, or
// one explicit delta per step.
type Clock struct {
	Steps  int
	DT     float64
	Deltas []float64
}

// Validate checks that the clock describes a runnable schedule.
func (c Clock) Validate() error {
	if c.Steps < 0 {
		return &InvalidClockError{Reason: fmt.Sprintf("negative step count %d", c.Steps)}
	}
	if len(c.Deltas) > 0 {
		if c.Steps != 0 && c.Steps != len(c.Deltas) {
			return &InvalidClockError{Reason: fmt.Sprintf("%d steps but %d deltas", c.Steps, len(c.Deltas))}
		}
		for i, d := range c.Deltas {
			if d <= 0 {
				return &InvalidClockError{Reason: fmt.Sprintf("delta %d is %v, must be positive", i+1, d)}
			}
		}
		return nil
	}
	if c.Steps > 0 && c.DT <= 0 {
		return &InvalidClockError{Reason: fmt.Sprintf("dt is %v, must be positive", c.DT)}
	}
	return nil
}

// NumSteps is the number of steps the clock will run.
func (c Clock) NumSteps() int {
	if len(c.Deltas) > 0 {
		return len(c.Deltas)
	}
	return c.Steps
}

// Delta returns dt for the 1-based step.
func (c Clock) Delta(step int) float64 {
	if len(c.Deltas) > 0 {
		return c.Deltas[step-1]
	}
	return c.DT
}

// StepInfo describes a committed step.
type StepInfo struct {
	RunID string
	Step  int
	DT    float64
	// Time is the simulated time elapsed at the end of the step.
	Time float64
	// Duration is the wall-clock time the step took.
	Duration time.Duration
}

// Observer is notified as a run progresses. Callbacks run synchronously
// on the engine goroutine and must not retain the engine's scope.
type Observer interface {
	Initialized(ctx context.Context, runID string, state Snapshot)
	StepCommitted(ctx context.Context, info StepInfo, state Snapshot)
	Finished(ctx context.Context, res *Result)
	Failed(ctx context.Context, runID string, err error)
}

// NopObserver implements Observer with no-ops. Embed it to implement only
// some of the callbacks.
type NopObserver struct{}

func (NopObserver) Initialized(context.Context, string, Snapshot) {}
func (NopObserver) StepCommitted(context.Context, StepInfo, Snapshot) {}
func (NopObserver) Finished(context.Context, *Result) {}
func (NopObserver) Failed(context.Context, string, error) {}

// Result is the outcome of a completed run.
type Result struct {
	RunID string
	Steps int
	// Time is the total simulated time.
	Time  float64
	State Snapshot
}

// Run initializes g once and executes the clock's steps. A graph runs only
// once; any later call returns ErrGraphConsumed.
func Run(ctx context.Context, g *Graph, clock Clock, observers ...Observer) (*Result, error) {
	if g.status != statusBuilt {
		return nil, ErrGraphConsumed
	}
	if err := clock.Validate(); err != nil {
		return nil, err
	}
	g.status = statusRunning

	runID := uuid.NewString()
	ctx = ctxlog.With(ctx, "run_id", runID)
	logger := ctxlog.FromContext(ctx)
	steps := clock.NumSteps()
	logger.Info("Run started.", "processes", len(g.plan.Order), "steps", steps)

	fail := func(err error) (*Result, error) {
		g.status = statusFailed
		logger.Error("Run failed.", "error", err)
		for _, o := range observers {
			o.Failed(ctx, runID, err)
		}
		return nil, err
	}

	if err := g.initialize(ctx); err != nil {
		return fail(err)
	}
	for _, o := range observers {
		o.Initialized(ctx, runID, g.Snapshot())
	}

	elapsed := 0.0
	for step := 1; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("run cancelled before step %d: %w", step, err))
		}
		dt := clock.Delta(step)
		start := time.Now()
		if err := g.step(ctx, step, dt); err != nil {
			return fail(err)
		}
		elapsed += dt
		info := StepInfo{RunID: runID, Step: step, DT: dt, Time: elapsed, Duration: time.Since(start)}
		logger.Debug("Step committed.", "step", step, "dt", dt, "time", elapsed)
		for _, o := range observers {
			o.StepCommitted(ctx, info, g.Snapshot())
		}
	}

	g.status = statusDone
	logger.Info("Run finished.", "steps", steps, "time", elapsed)
	res := &Result{RunID: runID, Steps: steps, Time: elapsed, State: g.Snapshot()}
	for _, o := range observers {
		o.Finished(ctx, res)
	}
	return res, nil
}

func (g *Graph) initialize(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	for _, name := range g.plan.Order {
		p, ok := g.processes[name].(process.Initializer)
		if !ok {
			continue
		}
		logger.Debug("Initializing process.", "process", name)
		if err := p.Initialize(&scope{g: g, proc: name, phase: PhaseInitialize}); err != nil {
			return &StepComputationError{Process: name, Phase: PhaseInitialize, Err: err}
		}
	}
	g.groups.Reset()

	for _, key := range g.Snapshot().Keys() {
		if err := g.checkIndexed(key, g.state[key]); err != nil {
			return &StepComputationError{Process: key.Process, Phase: PhaseInitialize, Err: err}
		}
	}
	return nil
}

// step runs Phase A and then Phase B. On failure the state committed by
// the previous step is restored.
func (g *Graph) step(ctx context.Context, step int, dt float64) error {
	logger := ctxlog.FromContext(ctx)
	g.groups.Reset()
	committed := maps.Clone(g.state)

	for _, name := range g.plan.Order {
		p, ok := g.processes[name].(process.Stepper)
		if !ok {
			continue
		}
		logger.Debug("Running step.", "process", name, "step", step)
		if err := p.RunStep(&scope{g: g, proc: name, phase: PhaseRunStep, step: step}, dt); err != nil {
			g.state = committed
			return &StepComputationError{Process: name, Phase: PhaseRunStep, Step: step, Err: err}
		}
		if err := g.checkOutputs(name, step); err != nil {
			g.state = committed
			return &StepComputationError{Process: name, Phase: PhaseRunStep, Step: step, Err: err}
		}
	}

	for _, name := range g.plan.Order {
		p, ok := g.processes[name].(process.Finalizer)
		if !ok {
			continue
		}
		logger.Debug("Finalizing step.", "process", name, "step", step)
		if err := p.FinalizeStep(&scope{g: g, proc: name, phase: PhaseFinalizeStep, step: step}); err != nil {
			g.state = committed
			return &StepComputationError{Process: name, Phase: PhaseFinalizeStep, Step: step, Err: err}
		}
	}
	return nil
}

// checkOutputs verifies that a process wrote all of its plain outputs
// during the step.
func (g *Graph) checkOutputs(name string, step int) error {
	for _, v := range g.plan.Registry.Vars(name) {
		if v.Kind != variable.Plain || v.Intent != variable.Out {
			continue
		}
		key := variable.Key{Process: name, Var: v.Name}
		if at, ok := g.written[key]; !ok || at != step {
			return &MissingOutputError{Process: name, Var: v.Name}
		}
	}
	return nil
}
