package graph

import (
	"fmt"
	"strings"

	"plexgraph/internal/library"
)

// Build modes.
const (
	ModeBipartite  = "bipartite"
	ModeSimilarity = "similarity"
)

// Options select which attributes contribute edges and how the graph is
// shaped.
type Options struct {
	// Mode is ModeBipartite (movie and entity nodes, as the tool
	// originally drew) or ModeSimilarity (movie-movie edges).
	Mode string
	// Attributes lists the contributing attributes: "actor", "director",
	// "writer", "genre".
	Attributes []string
	// MinRelationships drops entities appearing in fewer movies. It only
	// applies to bipartite mode; similarity edges are unaffected.
	MinRelationships int
}

// Build converts cached movie records into a relationship graph. An empty
// cache yields a graph with zero nodes and zero edges. Attribute names are
// normalized like the config loader normalizes them; an unrecognized name is
// an error rather than a silently empty graph.
func Build(movies []library.Movie, opts Options) (*Graph, error) {
	attributes, err := normalizeAttributes(opts.Attributes)
	if err != nil {
		return nil, err
	}
	opts.Attributes = attributes
	switch opts.Mode {
	case "", ModeBipartite:
		return buildBipartite(movies, opts), nil
	case ModeSimilarity:
		return buildSimilarity(movies, opts), nil
	default:
		return nil, fmt.Errorf("unknown graph mode %q", opts.Mode)
	}
}

// normalizeAttributes lowercases, singularizes, and dedupes attribute names,
// matching what the config loader accepts, and rejects names that map to no
// movie attribute.
func normalizeAttributes(attributes []string) ([]string, error) {
	if len(attributes) == 0 {
		return []string{"actor"}, nil
	}
	normalized := make([]string, 0, len(attributes))
	seen := make(map[string]struct{}, len(attributes))
	for _, attribute := range attributes {
		name := strings.TrimSpace(strings.ToLower(attribute))
		name = strings.TrimSuffix(name, "s")
		if name == "" {
			continue
		}
		switch name {
		case "actor", "director", "writer", "genre":
		default:
			return nil, fmt.Errorf("unknown graph attribute %q (valid: actor, director, writer, genre)", attribute)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		normalized = append(normalized, name)
	}
	if len(normalized) == 0 {
		return []string{"actor"}, nil
	}
	return normalized, nil
}

type entity struct {
	kind NodeKind
	name string
}

func (e entity) id() string {
	return string(e.kind) + "/" + e.name
}

func entityFor(attribute, name string) entity {
	if attribute == "genre" {
		return entity{kind: NodeGenre, name: name}
	}
	// Actors, directors, and writers share person identity, so someone who
	// both directs and stars is a single node.
	return entity{kind: NodePerson, name: name}
}

// movieEntities returns the distinct entities a movie links to through the
// selected attributes.
func movieEntities(movie library.Movie, attributes []string) []entity {
	var entities []entity
	seen := make(map[entity]struct{})
	for _, attribute := range attributes {
		for _, name := range movie.Attribute(attribute) {
			e := entityFor(attribute, name)
			if _, dup := seen[e]; dup {
				continue
			}
			seen[e] = struct{}{}
			entities = append(entities, e)
		}
	}
	return entities
}

func buildBipartite(movies []library.Movie, opts Options) *Graph {
	// Count the number of movies each entity appears in, then drop
	// entities below the relationship threshold.
	appearances := make(map[entity]int)
	for _, movie := range movies {
		for _, e := range movieEntities(movie, opts.Attributes) {
			appearances[e]++
		}
	}

	kept := make(map[entity]struct{}, len(appearances))
	byID := make(map[string]entity, len(appearances))
	var keptIDs []string
	for e, count := range appearances {
		if count >= opts.MinRelationships {
			kept[e] = struct{}{}
			byID[e.id()] = e
			keptIDs = append(keptIDs, e.id())
		}
	}
	// Entity nodes are emitted in collated order so exports are stable
	// across runs.
	library.SortNames(keptIDs)

	g := New()
	for _, id := range keptIDs {
		e := byID[id]
		g.AddNode(Node{ID: id, Label: e.name, Kind: e.kind})
	}

	// A movie joins the graph only when at least one kept entity links to
	// it, so the render is not cluttered with isolated movies.
	for _, movie := range movies {
		movieID := movie.Key()
		for _, e := range movieEntities(movie, opts.Attributes) {
			if _, ok := kept[e]; !ok {
				continue
			}
			if !g.HasNode(movieID) {
				g.AddNode(Node{ID: movieID, Label: movie.Title, Kind: NodeMovie})
			}
			g.AddEdge(movieID, e.id(), 1)
		}
	}
	return g
}

func buildSimilarity(movies []library.Movie, opts Options) *Graph {
	g := New()
	for _, movie := range movies {
		g.AddNode(Node{ID: movie.Key(), Label: movie.Title, Kind: NodeMovie})
	}

	// Index movies by entity, then connect every pair sharing one. Edge
	// weight accumulates across shared values: two movies sharing an actor
	// and a genre get a single edge of weight 2.
	byEntity := make(map[string][]int)
	for i, movie := range movies {
		for _, e := range movieEntities(movie, opts.Attributes) {
			byEntity[e.id()] = append(byEntity[e.id()], i)
		}
	}
	ids := make([]string, 0, len(byEntity))
	for id := range byEntity {
		ids = append(ids, id)
	}
	library.SortNames(ids)

	for _, id := range ids {
		members := byEntity[id]
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				g.AddEdge(movies[members[i]].Key(), movies[members[j]].Key(), 1)
			}
		}
	}
	return g
}
