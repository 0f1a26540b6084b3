package engine

import (
	"strings"

	"shopwave-catalog/catalog"
)

// RelationGraph is an undirected adjacency list over product keys. It is built per query
// from a result set and not shared, so it carries no lock.
type RelationGraph struct {
	adj map[int64][]int64
}

// NewRelationGraph returns an empty graph.
func NewRelationGraph() *RelationGraph {
	return &RelationGraph{adj: make(map[int64][]int64)}
}

// AddEdge links a and b in both directions. Repeated edges are kept.
func (g *RelationGraph) AddEdge(a, b int64) {
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
}

// Neighbors returns the adjacency list of key, nil when key has no edges.
func (g *RelationGraph) Neighbors(key int64) []int64 {
	return g.adj[key]
}

// Len returns the number of keys with at least one edge.
func (g *RelationGraph) Len() int {
	return len(g.adj)
}

// RelatedKeys walks the graph breadth-first from start and returns every key reached
// within maxDepth edges, in the order they were dequeued, excluding start. Keys at
// exactly maxDepth are returned but not expanded.
func (g *RelationGraph) RelatedKeys(start int64, maxDepth int) []int64 {
	result := []int64{}
	if _, ok := g.adj[start]; !ok {
		return result
	}

	depth := map[int64]int{start: 0}
	queue := []int64{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		d := depth[current]
		if d > 0 {
			result = append(result, current)
		}
		if d >= maxDepth {
			continue
		}
		for _, next := range g.adj[current] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = d + 1
			queue = append(queue, next)
		}
	}
	return result
}

// BuildRelationGraph links each record to the previous record (in input order) of the
// same category and to the previous record of the same brand. Comparison ignores case;
// records without a category or brand get no edge for that attribute.
func BuildRelationGraph(records []catalog.Record) *RelationGraph {
	g := NewRelationGraph()
	lastInCategory := make(map[string]int64)
	lastOfBrand := make(map[string]int64)

	for _, r := range records {
		if c := strings.ToLower(r.Category); c != "" {
			if prev, ok := lastInCategory[c]; ok {
				g.AddEdge(prev, r.Key)
			}
			lastInCategory[c] = r.Key
		}
		if b := strings.ToLower(r.Brand); b != "" {
			if prev, ok := lastOfBrand[b]; ok {
				g.AddEdge(prev, r.Key)
			}
			lastOfBrand[b] = r.Key
		}
	}
	return g
}
