package registry

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/vk/phydrago/internal/process"
)

// Module is the interface that all process modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// ProcessType describes one registered process type.
type ProcessType struct {
	Name        string
	Description string
	// New returns a fresh instance. Every configured process gets its own.
	New func() process.Process
}

// Registry holds all the registered process types for a single application
// instance.
type Registry struct {
	types map[string]*ProcessType
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{types: make(map[string]*ProcessType)}
}

// RegisterProcess registers a process type. Registering the same name twice
// is a programming error and panics.
func (r *Registry) RegisterProcess(t *ProcessType) {
	if t == nil || t.Name == "" || t.New == nil {
		panic("process type must have a name and a factory")
	}
	if _, exists := r.types[t.Name]; exists {
		panic(fmt.Sprintf("process type with name '%s' already registered", t.Name))
	}
	slog.Debug("Registering process type.", "name", t.Name)
	r.types[t.Name] = t
}

// RegisterModules lets each module register its types.
func (r *Registry) RegisterModules(modules ...Module) {
	for _, m := range modules {
		m.Register(r)
	}
}

// Lookup returns the registered type with the given name.
func (r *Registry) Lookup(name string) (*ProcessType, bool) {
	t, ok := r.types[name]
	return t, ok
}

// Types returns the registered type names, sorted.
func (r *Registry) Types() []string {
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
