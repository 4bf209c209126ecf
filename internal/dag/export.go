package dag

import (
	"fmt"
	"strings"
)

// DOT exports Graphviz DOT text. Edge labels carry the edge reasons.
func (g *Graph) DOT() string {
	nodes := g.Nodes()
	edges := g.Edges()

	var b strings.Builder
	b.WriteString("digraph phydrago {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[string]string, len(nodes))
	for i, id := range nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[id] = alias
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, escapeQuotes(id)))
	}
	for _, e := range edges {
		line := fmt.Sprintf("  %s -> %s", aliases[e.From], aliases[e.To])
		if len(e.Reasons) > 0 {
			line += fmt.Sprintf(" [label=\"%s\"]", escapeQuotes(strings.Join(e.Reasons, ", ")))
		}
		b.WriteString(line + ";\n")
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g *Graph) Mermaid() string {
	nodes := g.Nodes()
	edges := g.Edges()

	var b strings.Builder
	b.WriteString("graph LR\n")

	aliases := make(map[string]string, len(nodes))
	for i, id := range nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[id] = alias
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, escapeQuotes(id)))
	}
	for _, e := range edges {
		if len(e.Reasons) > 0 {
			b.WriteString(fmt.Sprintf("    %s -->|\"%s\"| %s\n", aliases[e.From], escapeQuotes(strings.Join(e.Reasons, ", ")), aliases[e.To]))
			continue
		}
		b.WriteString(fmt.Sprintf("    %s --> %s\n", aliases[e.From], aliases[e.To]))
	}
	return b.String()
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
