package process

import (
	"fmt"

	"github.com/vk/phydrago/internal/array"
)

// CommitDelta applies state += delta for the scope's own variables.
func CommitDelta(s Scope, state, delta string) error {
	current, err := s.Value(state)
	if err != nil {
		return err
	}
	d, err := s.Value(delta)
	if err != nil {
		return err
	}
	next, err := array.Add(current, d)
	if err != nil {
		return fmt.Errorf("commit %s += %s: %w", state, delta, err)
	}
	return s.Set(state, next)
}

// SumFluxes reads an aggregated group variable and writes its value scaled
// by dt into delta.
func SumFluxes(s Scope, fluxes, delta string, dt float64) error {
	total, err := s.Value(fluxes)
	if err != nil {
		return err
	}
	return s.Set(delta, total.Scale(dt))
}
