package graph

import (
	"encoding/json"
	"io"
)

type jsonDocument struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// WriteJSON renders the graph as a nodes/edges document suitable for
// d3-force and similar browser viewers. Empty graphs serialize with empty
// arrays rather than nulls.
func (g *Graph) WriteJSON(w io.Writer) error {
	doc := jsonDocument{Nodes: g.Nodes, Edges: g.Edges}
	if doc.Nodes == nil {
		doc.Nodes = []Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
