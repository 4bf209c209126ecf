// Package registry provides the central "glue" for the process module
// system.
//
// The Registry is responsible for storing mappings between the type names
// used in model files (e.g., "Phytoplankton") and the Go factories that
// implement them. Modules register their process types at startup.
//
// Before a model is built, the registry validates it against the registered
// types so that unknown types, misspelled inputs and bindings of the wrong
// kind are reported together, before any process runs.
package registry
