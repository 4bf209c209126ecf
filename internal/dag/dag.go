package dag

import (
	"fmt"
	"sort"
	"strings"
)

// CycleError is returned when no topological order exists. Path lists the
// nodes of one cycle, starting and ending with the same node.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cycle detected: %s", strings.Join(e.Path, " -> "))
}

// New creates and returns an initialized, empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph) AddNode(id string) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if _, ok := g.nodes[id]; ok {
		return
	}

	g.nodes[id] = &node{
		id:         id,
		pos:        len(g.order),
		deps:       make(map[string]*node),
		dependents: make(map[string]*node),
	}
	g.order = append(g.order, id)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An error is returned
// if either node does not exist or if the edge would create a self-reference.
func (g *Graph) AddEdge(fromID, toID, reason string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}

	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}

	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}

	if _, linked := toNode.deps[fromID]; linked {
		for i := range g.edges {
			if g.edges[i].From == fromID && g.edges[i].To == toID {
				if reason != "" && !contains(g.edges[i].Reasons, reason) {
					g.edges[i].Reasons = append(g.edges[i].Reasons, reason)
				}
				break
			}
		}
		return nil
	}

	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode

	e := Edge{From: fromID, To: toID}
	if reason != "" {
		e.Reasons = []string{reason}
	}
	g.edges = append(g.edges, e)
	return nil
}

// Nodes returns all node IDs in insertion order.
func (g *Graph) Nodes() []string {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return append([]string(nil), g.order...)
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	out := make([]Edge, len(g.edges))
	for i, e := range g.edges {
		out[i] = Edge{From: e.From, To: e.To, Reasons: append([]string(nil), e.Reasons...)}
	}
	return out
}

// Dependencies returns the IDs the given node depends on, in insertion order.
func (g *Graph) Dependencies(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.deps), nil
}

// Dependents returns the IDs that depend on the given node, in insertion order.
func (g *Graph) Dependents(id string) ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %s", id)
	}
	return sortedIDs(n.dependents), nil
}

// TopologicalSort returns every node such that each node comes after all of
// its dependencies. Among nodes that are ready at the same time the one
// inserted first wins, so the order is deterministic. When the graph has a
// cycle a *CycleError is returned and no order.
func (g *Graph) TopologicalSort() ([]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	remaining := make(map[string]int, len(g.nodes))
	var ready []*node
	for _, id := range g.order {
		n := g.nodes[id]
		remaining[id] = len(n.deps)
		if len(n.deps) == 0 {
			ready = append(ready, n)
		}
	}

	order := make([]string, 0, len(g.nodes))
	for len(ready) > 0 {
		// ready is kept sorted by insertion position.
		next := ready[0]
		ready = ready[1:]
		order = append(order, next.id)

		for _, dep := range sortedNodes(next.dependents) {
			remaining[dep.id]--
			if remaining[dep.id] == 0 {
				ready = insertByPos(ready, dep)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, &CycleError{Path: g.findCycle(remaining)}
	}
	return order, nil
}

// DetectCycles checks the graph for any cycles. It returns a *CycleError
// naming the nodes of the first cycle found.
func (g *Graph) DetectCycles() error {
	_, err := g.TopologicalSort()
	return err
}

// findCycle walks the nodes that Kahn's algorithm could not release and
// returns one cycle among them. Caller holds the read lock.
func (g *Graph) findCycle(remaining map[string]int) []string {
	// Use classic depth-first search with three sets of nodes:
	// permanent: nodes that have been fully visited and are not part of a cycle.
	// stack: nodes currently in the recursion stack for the current traversal.
	permanent := make(map[string]bool)
	onStack := make(map[string]int)
	var stack []string

	var visit func(n *node) []string
	visit = func(n *node) []string {
		if permanent[n.id] {
			return nil
		}
		if at, ok := onStack[n.id]; ok {
			path := append([]string(nil), stack[at:]...)
			return append(path, n.id)
		}
		onStack[n.id] = len(stack)
		stack = append(stack, n.id)
		for _, dependent := range sortedNodes(n.dependents) {
			if remaining[dependent.id] == 0 {
				continue
			}
			if path := visit(dependent); path != nil {
				return path
			}
		}
		stack = stack[:len(stack)-1]
		delete(onStack, n.id)
		permanent[n.id] = true
		return nil
	}

	for _, id := range g.order {
		if remaining[id] == 0 {
			continue
		}
		if path := visit(g.nodes[id]); path != nil {
			return path
		}
	}
	return nil
}

func sortedNodes(set map[string]*node) []*node {
	out := make([]*node, 0, len(set))
	for _, n := range set {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].pos < out[j].pos })
	return out
}

func sortedIDs(set map[string]*node) []string {
	nodes := sortedNodes(set)
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.id
	}
	return ids
}

func insertByPos(ready []*node, n *node) []*node {
	i := sort.Search(len(ready), func(i int) bool { return ready[i].pos > n.pos })
	ready = append(ready, nil)
	copy(ready[i+1:], ready[i:])
	ready[i] = n
	return ready
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
