// Package engine builds a process graph from configured process instances
// and drives it through the simulation lifecycle.
//
// Build declares every variable, resolves the bindings and the execution
// order, and seeds the external and default values. Run then initializes
// each process once and executes the requested number of steps. Every step
// has two phases over the same order: RunStep computes outputs from the
// state committed by the previous step, and FinalizeStep commits the new
// state. Phase B is transactional, so a failing finalize leaves the last
// committed step intact.
//
// The engine is single-threaded. A graph owns its state and runs once.
package engine
