package npz

import (
	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/variable"
)

// DefaultPhytoplankton is the process name foreign references resolve to
// unless rebound.
const DefaultPhytoplankton = "phytoplankton"

func phytoState() variable.Var {
	return variable.ForeignOf("P_state", DefaultPhytoplankton, "state").Describe("phytoplankton stock")
}

// ConstantGrowth contributes mu * P to the phytoplankton flux.
type ConstantGrowth struct{}

func (g *ConstantGrowth) Variables() []variable.Var {
	return []variable.Var{
		phytoState(),
		variable.Input("mu", "constant growth rate of phytoplankton"),
		variable.Output("P_growth", "").WithAnyDims().WithGroups("P_flux"),
	}
}

func (g *ConstantGrowth) RunStep(s process.Scope, _ float64) error {
	p, err := s.Value("P_state")
	if err != nil {
		return err
	}
	mu, err := s.Float("mu")
	if err != nil {
		return err
	}
	return s.Set("P_growth", p.Scale(mu))
}

// grazingVars are shared by both grazing processes. time is the simulated
// time at the start of the step; next_time is committed into it.
func grazingVars() []variable.Var {
	return []variable.Var{
		phytoState(),
		variable.Input("b", "initial grazing rate"),
		variable.Input("c", "grazing increase rate"),
		variable.State("time", "elapsed time").WithDefault(array.Scalar(0)),
		variable.Output("next_time", "elapsed time at the end of the step"),
		variable.Output("P_grazed", "").WithAnyDims().WithGroups("P_flux"),
	}
}

// grazed computes the grazing rate at the end of the step, b + c*(time+dt),
// and the grazing pressure rate * P.
func grazed(s process.Scope, dt float64) (array.Array, error) {
	t, err := s.Float("time")
	if err != nil {
		return array.Array{}, err
	}
	b, err := s.Float("b")
	if err != nil {
		return array.Array{}, err
	}
	c, err := s.Float("c")
	if err != nil {
		return array.Array{}, err
	}
	p, err := s.Value("P_state")
	if err != nil {
		return array.Array{}, err
	}
	next := t + dt
	if err := s.Set("next_time", array.Scalar(next)); err != nil {
		return array.Array{}, err
	}
	return p.Scale(b + c*next), nil
}

func commitTime(s process.Scope) error {
	next, err := s.Value("next_time")
	if err != nil {
		return err
	}
	return s.Set("time", next)
}

// Grazing removes (b + c*t) * P from the phytoplankton.
type Grazing struct{}

func (g *Grazing) Variables() []variable.Var { return grazingVars() }

func (g *Grazing) RunStep(s process.Scope, dt float64) error {
	pressure, err := grazed(s, dt)
	if err != nil {
		return err
	}
	return s.Set("P_grazed", pressure.Neg())
}

func (g *Grazing) FinalizeStep(s process.Scope) error { return commitTime(s) }

// ZooGrazing is Grazing where the grazed phytoplankton becomes zooplankton
// growth.
type ZooGrazing struct{}

func (g *ZooGrazing) Variables() []variable.Var {
	return append(grazingVars(),
		variable.Output("Z_growth", "").WithAnyDims().WithGroups("Z_flux"),
	)
}

func (g *ZooGrazing) RunStep(s process.Scope, dt float64) error {
	pressure, err := grazed(s, dt)
	if err != nil {
		return err
	}
	if err := s.Set("P_grazed", pressure.Neg()); err != nil {
		return err
	}
	return s.Set("Z_growth", pressure)
}

func (g *ZooGrazing) FinalizeStep(s process.Scope) error { return commitTime(s) }
