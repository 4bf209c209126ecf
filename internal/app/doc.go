// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the lifecycle of a simulation run: load
// the model, build the process graph, run it and write the results,
// decoupled from any specific entrypoint like a CLI.
package app
