package engine

import (
	"sort"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/variable"
)

// Snapshot is a copy of the model state: process name to variable name to
// value. Arrays are immutable, so a snapshot stays valid while the run
// continues.
type Snapshot map[string]map[string]array.Array

func newSnapshot(state map[variable.Key]array.Array) Snapshot {
	s := make(Snapshot)
	for key, v := range state {
		vars, ok := s[key.Process]
		if !ok {
			vars = make(map[string]array.Array)
			s[key.Process] = vars
		}
		vars[key.Var] = v
	}
	return s
}

// Get returns one stored value.
func (s Snapshot) Get(process, name string) (array.Array, bool) {
	v, ok := s[process][name]
	return v, ok
}

// Keys returns every stored key sorted by process, then variable.
func (s Snapshot) Keys() []variable.Key {
	var keys []variable.Key
	for p, vars := range s {
		for name := range vars {
			keys = append(keys, variable.Key{Process: p, Var: name})
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Process != keys[j].Process {
			return keys[i].Process < keys[j].Process
		}
		return keys[i].Var < keys[j].Var
	})
	return keys
}
