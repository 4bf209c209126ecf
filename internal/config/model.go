package config

import "github.com/zclconf/go-cty/cty"

// Model is the unified, format-agnostic representation of a simulation
// model: its process instances, its clock and where results go.
type Model struct {
	// Processes are kept in declaration order, which is the tie-break for
	// execution order.
	Processes []*Process
	Clock     *Clock
	Output    *Output
}

// Process is the format-agnostic representation of a `process` block.
type Process struct {
	Type string
	Name string
	// Inputs are external values by variable name.
	Inputs map[string]cty.Value
	// Bindings override foreign targets, as "process.variable" strings.
	Bindings map[string]string
	// Source is the file the block was read from.
	Source string
}

// Clock is the format-agnostic representation of the `clock` block.
type Clock struct {
	Steps  int
	DT     float64
	Deltas []float64
}

// Output is the format-agnostic representation of the `output` block.
type Output struct {
	// Path is the destination file; "-" means stdout.
	Path   string
	Format string
	// Record lists "process.variable" keys whose trajectory is written.
	Record []string
}

// Process returns the instance with the given name, or nil.
func (m *Model) Process(name string) *Process {
	for _, p := range m.Processes {
		if p.Name == name {
			return p
		}
	}
	return nil
}
