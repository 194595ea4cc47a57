package graph

// NodeKind distinguishes movie nodes from the entities they connect to.
type NodeKind string

const (
	NodeMovie  NodeKind = "movie"
	NodePerson NodeKind = "person"
	NodeGenre  NodeKind = "genre"
)

// Node is one vertex in the relationship graph.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`
}

// Edge is one undirected relationship. Weight counts how many shared
// attribute values back the edge (always 1 in bipartite mode).
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Weight int    `json:"weight"`
}

// Graph is the derived, ephemeral movie relationship structure. It is
// rebuilt from the cache on every invocation and never persisted.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	nodeIndex map[string]int
	edgeIndex map[[2]string]int
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[string]int),
		edgeIndex: make(map[[2]string]int),
	}
}

// AddNode inserts a node unless a node with the same ID already exists.
func (g *Graph) AddNode(node Node) {
	if _, exists := g.nodeIndex[node.ID]; exists {
		return
	}
	g.nodeIndex[node.ID] = len(g.Nodes)
	g.Nodes = append(g.Nodes, node)
}

// HasNode reports whether the graph contains a node with the given ID.
func (g *Graph) HasNode(id string) bool {
	_, exists := g.nodeIndex[id]
	return exists
}

// AddEdge inserts an undirected edge, accumulating weight when the pair is
// already connected. Self-edges are ignored.
func (g *Graph) AddEdge(source, target string, weight int) {
	if source == target {
		return
	}
	if weight <= 0 {
		weight = 1
	}
	key := edgeKey(source, target)
	if idx, exists := g.edgeIndex[key]; exists {
		g.Edges[idx].Weight += weight
		return
	}
	g.edgeIndex[key] = len(g.Edges)
	g.Edges = append(g.Edges, Edge{Source: source, Target: target, Weight: weight})
}

func edgeKey(a, b string) [2]string {
	if b < a {
		a, b = b, a
	}
	return [2]string{a, b}
}

// Stats summarizes a graph for display.
type Stats struct {
	Nodes  int
	Edges  int
	Movies int
	People int
	Genres int
}

// Stats computes node and edge counts by kind.
func (g *Graph) Stats() Stats {
	stats := Stats{Nodes: len(g.Nodes), Edges: len(g.Edges)}
	for _, node := range g.Nodes {
		switch node.Kind {
		case NodeMovie:
			stats.Movies++
		case NodePerson:
			stats.People++
		case NodeGenre:
			stats.Genres++
		}
	}
	return stats
}
