// Package npz provides the nutrient-phytoplankton-zooplankton processes:
// a zero-dimensional environment, the plankton components whose state
// integrates a flux group, and the fluxes that feed them.
package npz

import (
	"github.com/vk/phydrago/internal/process"
	"github.com/vk/phydrago/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the process types with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProcess(&registry.ProcessType{
		Name:        "Environment",
		Description: "Base grid dimension shared by all components.",
		New:         func() process.Process { return NewEnvironment() },
	})
	r.RegisterProcess(&registry.ProcessType{
		Name:        "Phytoplankton",
		Description: "Phytoplankton stock integrating the P_flux group.",
		New:         func() process.Process { return NewPhytoplankton() },
	})
	r.RegisterProcess(&registry.ProcessType{
		Name:        "Zooplankton",
		Description: "Zooplankton stock integrating the Z_flux group.",
		New:         func() process.Process { return NewZooplankton() },
	})
	r.RegisterProcess(&registry.ProcessType{
		Name:        "ConstantGrowth",
		Description: "Phytoplankton growth at a constant rate.",
		New:         func() process.Process { return &ConstantGrowth{} },
	})
	r.RegisterProcess(&registry.ProcessType{
		Name:        "Grazing",
		Description: "Phytoplankton loss to grazing at a linearly increasing rate.",
		New:         func() process.Process { return &Grazing{} },
	})
	r.RegisterProcess(&registry.ProcessType{
		Name:        "ZooGrazing",
		Description: "Grazing that transfers the grazed phytoplankton to zooplankton.",
		New:         func() process.Process { return &ZooGrazing{} },
	})
}
