package dag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Empty(t, g.nodes)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	assert.Len(t, g.nodes, 1)
	nodeA, ok := g.nodes["a"]
	require.True(t, ok)
	assert.Equal(t, "a", nodeA.id)
	assert.Equal(t, 0, nodeA.pos)
	assert.NotNil(t, nodeA.deps)
	assert.NotNil(t, nodeA.dependents)

	g.AddNode("a") // Test idempotency
	assert.Len(t, g.nodes, 1)

	g.AddNode("b")
	assert.Len(t, g.nodes, 2)
	assert.Equal(t, []string{"a", "b"}, g.Nodes())
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("a", "b", "foreign") // b depends on a
		require.NoError(t, err)

		nodeA := g.nodes["a"]
		nodeB := g.nodes["b"]

		assert.Contains(t, nodeA.dependents, "b")
		assert.Equal(t, nodeB, nodeA.dependents["b"])
		assert.Contains(t, nodeB.deps, "a")
		assert.Equal(t, nodeA, nodeB.deps["a"])
	})

	t.Run("repeated edges merge their reasons", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b", "group P_flux"))
		require.NoError(t, g.AddEdge("a", "b", "group Z_flux"))
		require.NoError(t, g.AddEdge("a", "b", "group P_flux"))

		edges := g.Edges()
		require.Len(t, edges, 1)
		assert.Equal(t, []string{"group P_flux", "group Z_flux"}, edges[0].Reasons)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		err := g.AddEdge("dne", "a", "")
		assert.ErrorContains(t, err, "source node not found")

		err = g.AddEdge("a", "dne", "")
		assert.ErrorContains(t, err, "destination node not found")

		err = g.AddEdge("a", "a", "")
		assert.ErrorContains(t, err, "self-referential edge")
	})
}

func TestDependenciesAndDependents(t *testing.T) {
	g := New()
	for _, id := range []string{"c", "a", "b"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("b", "c", ""))
	require.NoError(t, g.AddEdge("a", "c", ""))

	deps, err := g.Dependencies("c")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, deps, "insertion order, not edge order")

	dependents, err := g.Dependents("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, dependents)

	_, err = g.Dependencies("dne")
	assert.ErrorContains(t, err, "node not found")
}

func TestTopologicalSort(t *testing.T) {
	t.Run("independent nodes keep insertion order", func(t *testing.T) {
		g := New()
		for _, id := range []string{"z", "y", "x"} {
			g.AddNode(id)
		}
		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"z", "y", "x"}, order)
	})

	t.Run("dependencies come first", func(t *testing.T) {
		g := New()
		for _, id := range []string{"phyto", "growth", "grazing", "zoo"} {
			g.AddNode(id)
		}
		require.NoError(t, g.AddEdge("growth", "phyto", ""))
		require.NoError(t, g.AddEdge("grazing", "phyto", ""))
		require.NoError(t, g.AddEdge("grazing", "zoo", ""))

		order, err := g.TopologicalSort()
		require.NoError(t, err)
		assert.Equal(t, []string{"growth", "grazing", "phyto", "zoo"}, order)
	})

	t.Run("cycle returns no order", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		require.NoError(t, g.AddEdge("a", "b", ""))
		require.NoError(t, g.AddEdge("b", "a", ""))
		require.NoError(t, g.AddEdge("b", "c", ""))

		order, err := g.TopologicalSort()
		assert.Nil(t, order)
		var cycleErr *CycleError
		require.ErrorAs(t, err, &cycleErr)
		assert.Equal(t, []string{"a", "b", "a"}, cycleErr.Path)
	})
}

func TestDetectCycles(t *testing.T) {
	t.Run("empty graph has no cycles", func(t *testing.T) {
		g := New()
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("graph with nodes but no edges has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("valid dag has no cycles", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b", ""))
		require.NoError(t, g.AddEdge("b", "c", ""))
		require.NoError(t, g.AddEdge("a", "c", "")) // Transitive edge
		require.NoError(t, g.AddEdge("c", "d", ""))
		assert.NoError(t, g.DetectCycles())
	})

	t.Run("longer cycle is detected", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")
		g.AddNode("c")
		g.AddNode("d")
		require.NoError(t, g.AddEdge("a", "b", ""))
		require.NoError(t, g.AddEdge("b", "c", ""))
		require.NoError(t, g.AddEdge("c", "d", ""))
		require.NoError(t, g.AddEdge("d", "a", "")) // Cycle back to the start
		err := g.DetectCycles()
		assert.ErrorContains(t, err, "cycle detected: a -> b -> c -> d -> a")
	})

	t.Run("cycle in a disjoint component is detected", func(t *testing.T) {
		g := New()
		// Component 1 (valid)
		g.AddNode("a")
		g.AddNode("b")
		require.NoError(t, g.AddEdge("a", "b", ""))

		// Component 2 (has a cycle)
		g.AddNode("x")
		g.AddNode("y")
		g.AddNode("z")
		require.NoError(t, g.AddEdge("x", "y", ""))
		require.NoError(t, g.AddEdge("y", "z", ""))
		require.NoError(t, g.AddEdge("z", "y", "")) // Cycle

		var cycleErr *CycleError
		require.ErrorAs(t, g.DetectCycles(), &cycleErr)
		assert.Equal(t, []string{"y", "z", "y"}, cycleErr.Path)
	})
}

func TestExport(t *testing.T) {
	g := New()
	g.AddNode("growth")
	g.AddNode("phyto")
	require.NoError(t, g.AddEdge("growth", "phyto", "group P_flux"))

	dot := g.DOT()
	assert.Contains(t, dot, "digraph phydrago {")
	assert.Contains(t, dot, `n0 [label="growth"];`)
	assert.Contains(t, dot, `n0 -> n1 [label="group P_flux"];`)

	mermaid := g.Mermaid()
	assert.Contains(t, mermaid, "graph LR")
	assert.Contains(t, mermaid, `n0 -->|"group P_flux"| n1`)
}

func TestProperty_TopologicalOrderRespectsEdges(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(t, "nodes")
		g := New()
		for i := 0; i < n; i++ {
			g.AddNode(fmt.Sprintf("p%d", i))
		}
		// Edges only go from lower to higher index, so the graph is acyclic.
		edgeCount := rapid.IntRange(0, n*2).Draw(t, "edges")
		for e := 0; e < edgeCount; e++ {
			from := rapid.IntRange(0, n-1).Draw(t, "from")
			to := rapid.IntRange(0, n-1).Draw(t, "to")
			if from >= to {
				continue
			}
			if err := g.AddEdge(fmt.Sprintf("p%d", from), fmt.Sprintf("p%d", to), ""); err != nil {
				t.Fatal(err)
			}
		}

		order, err := g.TopologicalSort()
		if err != nil {
			t.Fatal(err)
		}
		if len(order) != n {
			t.Fatalf("order has %d nodes, want %d", len(order), n)
		}
		pos := make(map[string]int, n)
		for i, id := range order {
			pos[id] = i
		}
		for _, e := range g.Edges() {
			if pos[e.From] >= pos[e.To] {
				t.Fatalf("edge %s -> %s violated by order %v", e.From, e.To, order)
			}
		}
	})
}
