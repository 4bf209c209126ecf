// Package group aggregates same-named contributions from many producer
// processes into the single value a consumer reads.
//
// A Table is scoped to one step: the engine resets it at the start of every
// step, producers contribute while they compute their outputs, and consumers
// aggregate on read. Nothing is cached across steps.
package group

import (
	"fmt"
	"sort"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/variable"
)

// Contribution is one producer's value for a group in the current step.
type Contribution struct {
	Source variable.Key
	Value  array.Array
}

// Table maps group names to their current-step contributions.
type Table struct {
	groups map[string][]Contribution
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{groups: make(map[string][]Contribution)}
}

// Reset drops every contribution.
func (t *Table) Reset() {
	t.groups = make(map[string][]Contribution)
}

// Contribute records v from source into group. A second contribution from
// the same source in the same step replaces the first.
func (t *Table) Contribute(group string, source variable.Key, v array.Array) {
	list := t.groups[group]
	for i := range list {
		if list[i].Source == source {
			list[i].Value = v
			return
		}
	}
	t.groups[group] = append(list, Contribution{Source: source, Value: v})
}

// Contributions returns the contributions to group in arrival order.
func (t *Table) Contributions(group string) []Contribution {
	return append([]Contribution(nil), t.groups[group]...)
}

// Aggregate sums the current contributions to group, starting from zero.
func (t *Table) Aggregate(group string, zero array.Array) (array.Array, error) {
	return Aggregate(group, t.groups[group], zero)
}

// Aggregate sums contributions starting from zero, which must be the zero
// array of the consumer's shape (or the scalar zero). Contributions are
// summed in source-key order, so the result does not depend on the order in
// which producers ran.
func Aggregate(group string, contributions []Contribution, zero array.Array) (array.Array, error) {
	if !zero.Valid() {
		zero = array.Scalar(0)
	}
	sorted := append([]Contribution(nil), contributions...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i].Source, sorted[j].Source
		if a.Process != b.Process {
			return a.Process < b.Process
		}
		return a.Var < b.Var
	})

	acc := zero
	for _, c := range sorted {
		var err error
		acc, err = array.Add(acc, c.Value)
		if err != nil {
			return array.Array{}, fmt.Errorf("aggregate group %q: contribution from %s: %w", group, c.Source, err)
		}
	}
	return acc, nil
}
