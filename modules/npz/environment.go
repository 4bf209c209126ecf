package npz

import (
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/variable"
)

// EnvDim is the base dimension every component state can be laid out on.
const EnvDim = "env"

// Environment provides the zero-dimensional base grid. It collects the
// grid fluxes of higher-dimensional grids, when any exist, into a
// component flux.
type Environment struct{}

// NewEnvironment returns an Environment process.
func NewEnvironment() *Environment { return &Environment{} }

func (e *Environment) Variables() []variable.Var {
	return []variable.Var{
		variable.Input("model_dims", "number of model dimensions"),
		variable.IndexOf("env", EnvDim).Describe("base grid point"),
		variable.GroupOf("grid_fluxes", "grid_flux").AsOptional(),
		variable.Output("comp_flux", "sum of grid fluxes").WithAnyDims().WithGroups("component_flux"),
	}
}

func (e *Environment) Initialize(s process.Scope) error {
	return s.SetIndex("env", 1)
}

func (e *Environment) RunStep(s process.Scope, _ float64) error {
	total, err := s.Value("grid_fluxes")
	if err != nil {
		return err
	}
	return s.Set("comp_flux", total)
}
