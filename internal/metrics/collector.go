package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vk/phydrago/internal/ctxlog"
	"github.com/vk/phydrago/internal/engine"
)

// Collector records run and step metrics.
type Collector struct {
	engine.NopObserver

	runsTotal     *prometheus.CounterVec
	stepsTotal    prometheus.Counter
	stepDuration  prometheus.Histogram
	simulatedTime prometheus.Gauge
	stateValue    *prometheus.GaugeVec

	mu     sync.Mutex
	active map[string]struct{}
}

// NewCollector registers the simulation metrics with reg under namespace.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	c := &Collector{active: make(map[string]struct{})}

	c.runsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of simulation runs by outcome",
		},
		[]string{"status"},
	)

	c.stepsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of committed simulation steps",
		},
	)

	c.stepDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Wall-clock duration of a simulation step",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 8),
		},
	)

	c.simulatedTime = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "simulated_time",
			Help:      "Simulated time at the last committed step",
		},
	)

	c.stateValue = factory.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_value",
			Help:      "Value of scalar model variables at the last committed step",
		},
		[]string{"process", "variable"},
	)

	return c
}

func (c *Collector) Initialized(ctx context.Context, runID string, state engine.Snapshot) {
	c.mu.Lock()
	c.active[runID] = struct{}{}
	c.mu.Unlock()
	c.simulatedTime.Set(0)
	c.observeState(state)
	ctxlog.FromContext(ctx).Debug("Metrics collector attached to run.")
}

func (c *Collector) StepCommitted(_ context.Context, info engine.StepInfo, state engine.Snapshot) {
	c.stepsTotal.Inc()
	c.stepDuration.Observe(info.Duration.Seconds())
	c.simulatedTime.Set(info.Time)
	c.observeState(state)
}

func (c *Collector) Finished(_ context.Context, res *engine.Result) {
	c.finish(res.RunID, "succeeded")
}

func (c *Collector) Failed(_ context.Context, runID string, _ error) {
	c.finish(runID, "failed")
}

// ActiveRuns is the number of runs initialized but not yet finished.
func (c *Collector) ActiveRuns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

func (c *Collector) finish(runID, status string) {
	c.mu.Lock()
	delete(c.active, runID)
	c.mu.Unlock()
	c.runsTotal.WithLabelValues(status).Inc()
}

func (c *Collector) observeState(state engine.Snapshot) {
	for _, key := range state.Keys() {
		v, _ := state.Get(key.Process, key.Var)
		if !v.IsScalar() {
			continue
		}
		f, _ := v.Float()
		c.stateValue.WithLabelValues(key.Process, key.Var).Set(f)
	}
}
