package npz

import (
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/variable"
)

// Component is a plankton stock. Its state is a scalar or laid out on
// (env, Index); every step it sums its flux group into delta and commits
// state += delta.
type Component struct {
	// Index is both the index variable name and the dimension it creates.
	Index string
	// Group is the flux group the component integrates.
	Group string
}

// NewPhytoplankton returns the phytoplankton component.
func NewPhytoplankton() *Component { return &Component{Index: "P", Group: "P_flux"} }

// NewZooplankton returns the zooplankton component.
func NewZooplankton() *Component { return &Component{Index: "Z", Group: "Z_flux"} }

func (c *Component) Variables() []variable.Var {
	shapes := [][]string{{}, {EnvDim, c.Index}}
	return []variable.Var{
		variable.Input("dim", "number of entries along the component dimension"),
		variable.IndexOf(c.Index, c.Index),
		variable.State("state", "component stock").WithDims(shapes...),
		variable.GroupOf("fluxes", c.Group).WithDims(shapes...),
		variable.Output("delta", "pending change of state").WithDims(shapes...),
	}
}

func (c *Component) Initialize(s process.Scope) error {
	n, err := s.Int("dim")
	if err != nil {
		return err
	}
	return s.SetIndex(c.Index, n)
}

func (c *Component) RunStep(s process.Scope, dt float64) error {
	return process.SumFluxes(s, "fluxes", "delta", dt)
}

func (c *Component) FinalizeStep(s process.Scope) error {
	return process.CommitDelta(s, "state", "delta")
}
