// Package dag is the ordering layer of the engine. It holds a directed graph
// of process instances whose edges mean "must run before", produces a stable
// topological order in which independent nodes keep their insertion order,
// and reports the node path of any cycle it finds.
//
// The graph can be exported as Graphviz DOT or Mermaid text for inspection.
package dag
