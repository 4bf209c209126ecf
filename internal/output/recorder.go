package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/phydrago/internal/engine"
	"github.com/vk/phydrago/internal/variable"
)

// Recorder is an engine.Observer that samples selected variables after
// initialize and after every committed step.
type Recorder struct {
	engine.NopObserver
	keys    []variable.Key
	samples map[variable.Key][]Sample
	errs    []error
}

// NewRecorder returns a recorder for the given "process.variable" refs.
func NewRecorder(refs ...string) (*Recorder, error) {
	r := &Recorder{samples: make(map[variable.Key][]Sample)}
	for _, ref := range refs {
		key, err := variable.ParseRef(ref)
		if err != nil {
			return nil, err
		}
		r.keys = append(r.keys, key)
	}
	return r, nil
}

// Keys returns the recorded variables.
func (r *Recorder) Keys() []variable.Key { return r.keys }

func (r *Recorder) Initialized(_ context.Context, _ string, state engine.Snapshot) {
	r.record(0, 0, state)
}

func (r *Recorder) StepCommitted(_ context.Context, info engine.StepInfo, state engine.Snapshot) {
	r.record(info.Step, info.Time, state)
}

func (r *Recorder) record(step int, t float64, state engine.Snapshot) {
	for _, key := range r.keys {
		v, ok := state.Get(key.Process, key.Var)
		if !ok {
			if step == 0 {
				r.errs = append(r.errs, fmt.Errorf("recorded variable %s has no stored value", key))
			}
			continue
		}
		r.samples[key] = append(r.samples[key], Sample{Step: step, Time: t, Value: Encode(v)})
	}
}

// Samples returns the trajectory of one variable.
func (r *Recorder) Samples(key variable.Key) []Sample { return r.samples[key] }

// Trajectories returns every recorded trajectory keyed by "process.variable".
func (r *Recorder) Trajectories() map[string][]Sample {
	out := make(map[string][]Sample, len(r.samples))
	for key, s := range r.samples {
		out[key.String()] = s
	}
	return out
}

// Err reports variables that could not be recorded.
func (r *Recorder) Err() error { return errors.Join(r.errs...) }
