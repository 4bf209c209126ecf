package variable

import "sort"

// Registry records variable declarations per process instance. It keeps the
// order in which processes and variables were declared, which the resolver
// uses as its tie-break. A Registry allocates no storage for values.
type Registry struct {
	processes []string
	order     map[string]int
	vars      map[string][]Var
	lookup    map[Key]Var
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		order:  make(map[string]int),
		vars:   make(map[string][]Var),
		lookup: make(map[Key]Var),
	}
}

// AddProcess registers a process instance with no variables yet.
func (r *Registry) AddProcess(process string) error {
	if process == "" {
		return &InvalidDeclarationError{Reason: "empty process name"}
	}
	if _, exists := r.order[process]; exists {
		return &DuplicateProcessError{Process: process}
	}
	r.order[process] = len(r.processes)
	r.processes = append(r.processes, process)
	return nil
}

// Declare records v for process. A process not yet added is added first.
// A rejected declaration leaves the registry unchanged.
func (r *Registry) Declare(process string, v Var) error {
	if err := validate(process, v); err != nil {
		return err
	}
	key := Key{Process: process, Var: v.Name}
	if _, exists := r.lookup[key]; exists {
		return &DuplicateVariableError{Process: process, Var: v.Name}
	}
	if _, exists := r.order[process]; !exists {
		if err := r.AddProcess(process); err != nil {
			return err
		}
	}
	v.Groups = append([]string(nil), v.Groups...)
	r.lookup[key] = v
	r.vars[process] = append(r.vars[process], v)
	return nil
}

func validate(process string, v Var) error {
	if v.Name == "" {
		return &InvalidDeclarationError{Process: process, Reason: "empty variable name"}
	}
	if !v.Intent.Valid() {
		return &InvalidIntentError{Process: process, Var: v.Name, Value: v.Intent.String()}
	}
	switch v.Kind {
	case Plain:
	case Foreign:
		if v.Intent != In {
			return &InvalidIntentError{Process: process, Var: v.Name, Value: v.Intent.String(), Reason: "foreign references are read-only"}
		}
		if v.Target.Process == "" || v.Target.Var == "" {
			return &InvalidDeclarationError{Process: process, Var: v.Name, Reason: "foreign reference without a target"}
		}
	case Group:
		if v.Intent != In {
			return &InvalidIntentError{Process: process, Var: v.Name, Value: v.Intent.String(), Reason: "group values are read-only"}
		}
		if v.GroupName == "" {
			return &InvalidDeclarationError{Process: process, Var: v.Name, Reason: "group binding without a group name"}
		}
	case Index:
		if v.Intent != Out {
			return &InvalidIntentError{Process: process, Var: v.Name, Value: v.Intent.String(), Reason: "grid indexes are outputs"}
		}
		if v.Dim == "" {
			return &InvalidDeclarationError{Process: process, Var: v.Name, Reason: "grid index without a dimension"}
		}
	default:
		return &InvalidDeclarationError{Process: process, Var: v.Name, Reason: "unknown kind " + v.Kind.String()}
	}
	if len(v.Groups) > 0 && v.Intent == In {
		return &InvalidDeclarationError{Process: process, Var: v.Name, Reason: "inputs cannot contribute to groups"}
	}
	return nil
}

// Processes returns the process names in declaration order.
func (r *Registry) Processes() []string {
	return append([]string(nil), r.processes...)
}

// HasProcess reports whether process was declared.
func (r *Registry) HasProcess(process string) bool {
	_, ok := r.order[process]
	return ok
}

// Position returns the declaration position of process, or -1.
func (r *Registry) Position(process string) int {
	if i, ok := r.order[process]; ok {
		return i
	}
	return -1
}

// Vars returns the declarations of process in declaration order.
func (r *Registry) Vars(process string) []Var {
	return append([]Var(nil), r.vars[process]...)
}

// Lookup returns the declaration for key.
func (r *Registry) Lookup(key Key) (Var, bool) {
	v, ok := r.lookup[key]
	return v, ok
}

// Producers returns the variables contributing to group, in declaration order.
func (r *Registry) Producers(group string) []Key {
	var keys []Key
	for _, p := range r.processes {
		for _, v := range r.vars[p] {
			for _, g := range v.Groups {
				if g == group {
					keys = append(keys, Key{Process: p, Var: v.Name})
					break
				}
			}
		}
	}
	return keys
}

// Consumers returns the group declarations reading group, in declaration order.
func (r *Registry) Consumers(group string) []Key {
	var keys []Key
	for _, p := range r.processes {
		for _, v := range r.vars[p] {
			if v.Kind == Group && v.GroupName == group {
				keys = append(keys, Key{Process: p, Var: v.Name})
			}
		}
	}
	return keys
}

// Groups returns every group name that is produced into or consumed, sorted.
func (r *Registry) Groups() []string {
	seen := make(map[string]struct{})
	for _, v := range r.lookup {
		for _, g := range v.Groups {
			seen[g] = struct{}{}
		}
		if v.Kind == Group {
			seen[v.GroupName] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
