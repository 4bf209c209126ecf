// Package config defines the format-agnostic model configuration, along
// with the core interfaces (Loader, Converter) for loading it and
// interpreting its values.
//
// The `config.Model` is the single source of truth for building the
// process graph. Concrete implementations of the interfaces, such as for
// HCL, are provided in separate packages.
package config
