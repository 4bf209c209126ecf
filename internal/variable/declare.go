package variable

import "github.com/vk/phydrago/internal/array"

// Input declares an owned variable with intent In.
func Input(name, description string) Var {
	return Var{Name: name, Kind: Plain, Intent: In, Description: description}
}

// Output declares an owned variable with intent Out.
func Output(name, description string) Var {
	return Var{Name: name, Kind: Plain, Intent: Out, Description: description}
}

// State declares an owned variable with intent InOut.
func State(name, description string) Var {
	return Var{Name: name, Kind: Plain, Intent: InOut, Description: description}
}

// ForeignOf declares an input bound to another process's variable.
func ForeignOf(name, process, target string) Var {
	return Var{Name: name, Kind: Foreign, Intent: In, Target: Ref{Process: process, Var: target}}
}

// GroupOf declares an input bound to the aggregate of a group.
func GroupOf(name, group string) Var {
	return Var{Name: name, Kind: Group, Intent: In, GroupName: group, AnyDims: true}
}

// IndexOf declares a grid index creating dimension dim.
func IndexOf(name, dim string) Var {
	return Var{Name: name, Kind: Index, Intent: Out, Dim: dim, Dims: [][]string{{dim}}}
}

// WithDims returns v accepting the given dims alternatives.
func (v Var) WithDims(alternatives ...[]string) Var {
	v.Dims = append([][]string(nil), alternatives...)
	v.AnyDims = false
	return v
}

// WithAnyDims returns v accepting any dims.
func (v Var) WithAnyDims() Var {
	v.AnyDims = true
	return v
}

// WithGroups returns v contributing to the given groups.
func (v Var) WithGroups(groups ...string) Var {
	v.Groups = append(append([]string(nil), v.Groups...), groups...)
	return v
}

// WithDefault returns v resolving to def when no external value is given.
func (v Var) WithDefault(def array.Array) Var {
	v.Default = &def
	return v
}

// AsOptional returns a group declaration that tolerates zero producers.
func (v Var) AsOptional() Var {
	v.Optional = true
	return v
}

// Describe returns v with its description set.
func (v Var) Describe(description string) Var {
	v.Description = description
	return v
}
