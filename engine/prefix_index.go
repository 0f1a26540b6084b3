// Package engine implements the in-process catalog auxiliary structures that sit beside the
// product store: prefix autocomplete, recently-viewed tracking, SKU lookup, ranked and
// filtered views, top-K selection and related-product traversal.
//
// Concurrency model:
//   - PrefixIndex and KeyIndex each own a sync.RWMutex. Inserts and rebuilds are exclusive,
//     queries are shared. Rebuilds assemble the new structure off-lock and swap it in, so a
//     reader never sees a partially inserted path or a half-populated map.
//   - Engine.mu orders OnCreate against the Rebuild swap; creates seen mid-rebuild are replayed.
//   - RecencyCache is mutated on every read and relies on the LRU's internal mutex.
//   - Ordering, selection and graph functions are pure over caller-owned slices.
package engine

import (
	"sort"
	"sync"

	"golang.org/x/text/cases"
)

// trieEdge labels the edge to a child node with one rune.
type trieEdge struct {
	r     rune
	child int32
}

// trieNode lives in the PrefixIndex arena. Edges are kept sorted by rune.
type trieNode struct {
	edges    []trieEdge
	terminal bool
	value    string // original-case value; set only on terminal nodes
}

// trieArena is a tree of nodes addressed by index; index 0 is the root.
type trieArena struct {
	nodes []trieNode
	words int
}

func newTrieArena() *trieArena {
	return &trieArena{nodes: make([]trieNode, 1, 64)}
}

func (a *trieArena) child(n int32, r rune) (int32, bool) {
	edges := a.nodes[n].edges
	i := sort.Search(len(edges), func(i int) bool { return edges[i].r >= r })
	if i < len(edges) && edges[i].r == r {
		return edges[i].child, true
	}
	return 0, false
}

func (a *trieArena) childOrCreate(n int32, r rune) int32 {
	edges := a.nodes[n].edges
	i := sort.Search(len(edges), func(i int) bool { return edges[i].r >= r })
	if i < len(edges) && edges[i].r == r {
		return edges[i].child
	}

	idx := int32(len(a.nodes))
	a.nodes = append(a.nodes, trieNode{})

	edges = append(edges, trieEdge{})
	copy(edges[i+1:], edges[i:])
	edges[i] = trieEdge{r: r, child: idx}
	a.nodes[n].edges = edges
	return idx
}

func (a *trieArena) insert(value string) {
	if value == "" {
		return
	}
	var n int32
	for _, r := range foldCase(value) {
		n = a.childOrCreate(n, r)
	}
	if !a.nodes[n].terminal {
		a.words++
	}
	a.nodes[n].terminal = true
	a.nodes[n].value = value
}

// collect appends terminal values below n in pre-order until limit values are held.
func (a *trieArena) collect(n int32, out []string, limit int) []string {
	if len(out) >= limit {
		return out
	}
	node := &a.nodes[n]
	if node.terminal {
		out = append(out, node.value)
	}
	for _, e := range node.edges {
		if len(out) >= limit {
			break
		}
		out = a.collect(e.child, out, limit)
	}
	return out
}

// foldCase returns the Unicode case-folded form of s, so final and medial sigma match.
// A Caser is stateful, so one is built per call.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

// PrefixIndex is a case-insensitive trie for autocomplete. Matching is on the case-folded
// form; results carry the capitalization the value was inserted with.
type PrefixIndex struct {
	mu    sync.RWMutex
	arena *trieArena
}

// NewPrefixIndex returns an empty index.
func NewPrefixIndex() *PrefixIndex {
	return &PrefixIndex{arena: newTrieArena()}
}

// Insert adds value. Empty values are ignored. Inserting a value that folds to an
// existing entry replaces the stored capitalization.
// Time complexity: O(len(value))
func (p *PrefixIndex) Insert(value string) {
	if value == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.arena.insert(value)
}

// Load replaces the whole index with values.
func (p *PrefixIndex) Load(values []string) {
	arena := newTrieArena()
	for _, v := range values {
		arena.insert(v)
	}

	p.mu.Lock()
	p.arena = arena
	p.mu.Unlock()
}

// Suggest returns up to limit stored values whose folded form starts with the folded
// prefix. Result order follows the trie walk and is not part of the contract.
// Time complexity: O(len(prefix) + size of the matched subtree, bounded by limit)
func (p *PrefixIndex) Suggest(prefix string, limit int) []string {
	results := []string{}
	if prefix == "" || limit <= 0 {
		return results
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	var n int32
	for _, r := range foldCase(prefix) {
		next, ok := p.arena.child(n, r)
		if !ok {
			return results
		}
		n = next
	}
	return p.arena.collect(n, results, limit)
}

// Len returns the number of distinct stored values.
func (p *PrefixIndex) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.arena.words
}
