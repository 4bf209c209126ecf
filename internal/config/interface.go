package config

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/phydrago/internal/array"
	"github.com/vk/phydrago/internal/variable"
)

// Loader is the interface for a format-specific configuration loader.
type Loader interface {
	// Load reads configuration from the given paths, translates it into the
	// format-agnostic model, and returns a matching Converter.
	Load(ctx context.Context, paths ...string) (*Model, Converter, error)
}

// Converter is the bridge between raw configured values and the arrays the
// engine works with.
type Converter interface {
	// ToArray converts a configured value into an array, naming its
	// dimensions after the declaration it is supplied for.
	ToArray(v cty.Value, decl variable.Var) (array.Array, error)
}
