package hcl_adapter

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any
// file. Anything else in a file is a decode error.
type fileRoot struct {
	Clocks    []*Clock   `hcl:"clock,block"`
	Processes []*Process `hcl:"process,block"`
	Outputs   []*Output  `hcl:"output,block"`
}

// Clock is the HCL schema for a `clock` block.
type Clock struct {
	Steps  *int      `hcl:"steps,optional"`
	DT     *float64  `hcl:"dt,optional"`
	Deltas []float64 `hcl:"deltas,optional"`
}

// Process is the HCL schema for a `process "<Type>" "<name>"` block.
type Process struct {
	Type   string            `hcl:"type,label"`
	Name   string            `hcl:"name,label"`
	Inputs *InputsBlock      `hcl:"inputs,block"`
	Bind   map[string]string `hcl:"bind,optional"`
}

// InputsBlock holds the free-form attributes of an `inputs` block.
type InputsBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// Output is the HCL schema for the `output` block.
type Output struct {
	Path   string   `hcl:"path,optional"`
	Format string   `hcl:"format,optional"`
	Record []string `hcl:"record,optional"`
}
