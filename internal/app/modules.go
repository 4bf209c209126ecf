package app

import (
	"github.com/vk/phydrago/internal/registry"
	"github.com/vk/phydrago/modules/npz"
)

// coreModules is the definitive list of all modules that are compiled into
// the phydrago binary.
var coreModules = []registry.Module{
	&npz.Module{},
}
