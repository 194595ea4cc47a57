package graph

import (
	"fmt"
	"io"
	"strings"
)

// WriteDOT renders the graph in Graphviz format. Movie nodes are boxes,
// people ellipses, genres diamonds, so a plain `dot` or `sfdp` render reads
// without a legend.
func (g *Graph) WriteDOT(w io.Writer) error {
	var b strings.Builder
	b.WriteString("graph movies {\n")
	b.WriteString("  layout=sfdp;\n")
	b.WriteString("  overlap=prism;\n")
	b.WriteString("  node [fontsize=10];\n")

	for _, node := range g.Nodes {
		fmt.Fprintf(&b, "  %s [label=%s, shape=%s];\n",
			dotQuote(node.ID), dotQuote(node.Label), dotShape(node.Kind))
	}
	for _, edge := range g.Edges {
		if edge.Weight > 1 {
			fmt.Fprintf(&b, "  %s -- %s [weight=%d, penwidth=%d];\n",
				dotQuote(edge.Source), dotQuote(edge.Target), edge.Weight, edge.Weight)
			continue
		}
		fmt.Fprintf(&b, "  %s -- %s;\n", dotQuote(edge.Source), dotQuote(edge.Target))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func dotShape(kind NodeKind) string {
	switch kind {
	case NodeMovie:
		return "box"
	case NodeGenre:
		return "diamond"
	default:
		return "ellipse"
	}
}

// dotQuote escapes an identifier for the DOT quoted-string form.
func dotQuote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
