/*
	Package commitgraph implements the commit graph builder (spec §4.5,
	component C5): an immutable child→parents directed graph over every
	commit reachable from some `refs/…` entry, grounded on the original
	implementation's GitFileSystemImpl.getCommits/graph (a RevWalk seeded
	from every ref, walked to exhaustion, then transformed node-by-node
	into the public vertex type).

	Go has no Guava MutableGraph to transform, so the walk and the
	transform happen in the same pass: each commit is fetched once via
	objstore.Store.Commit, which already hands back parents, so there is
	no separate "walk first, parse later" split to begin with.
*/
package commitgraph

import (
	"sync"

	"github.com/sirupsen/logrus"

	"go.polydawn.net/gitjfs/objstore"
)

// Node is a CommitNode (spec §4.4): a commit's full metadata plus the
// ordered ids of its parents.
type Node struct {
	Commit  objstore.CommitInfo
	Parents []objstore.ID
}

// Graph is the immutable result of a build: every commit reachable from
// some ref, keyed by commit id.
type Graph struct {
	nodes map[objstore.ID]Node
	order []objstore.ID
}

// Node looks up a single vertex.
func (g *Graph) Node(id objstore.ID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every vertex, in the (stable, first-discovered) order the
// build assigned them.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.order))
	for i, id := range g.order {
		out[i] = g.nodes[id]
	}
	return out
}

// Len reports the number of commits in the graph.
func (g *Graph) Len() int {
	return len(g.order)
}

// Build enumerates every ref under "refs/", walks every commit reachable
// from a ref tip, and returns the resulting graph. Commits unreachable
// from any ref are excluded, matching ordinary git reachability.
func Build(store objstore.Store) (*Graph, error) {
	refNames, err := store.ListRefs("refs/")
	if err != nil {
		return nil, err
	}

	g := &Graph{nodes: make(map[objstore.ID]Node)}
	var frontier []objstore.ID
	for _, name := range refNames {
		id, ok, err := store.ResolveRef(name)
		if err != nil {
			return nil, err
		}
		if ok {
			frontier = append(frontier, id)
		}
	}

	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		if _, seen := g.nodes[id]; seen {
			continue
		}
		info, err := store.Commit(id)
		if err != nil {
			return nil, err
		}
		g.nodes[id] = Node{Commit: info, Parents: info.Parents}
		g.order = append(g.order, id)
		frontier = append(frontier, info.Parents...)
	}

	logrus.WithField("commits", len(g.order)).Debug("commitgraph: built graph")
	return g, nil
}

// Cache memoizes one Graph per store, per spec §4.5 ("the result is
// memoized; subsequent calls return the same value while the instance is
// open"). An owning FileSystemInstance holds exactly one Cache.
type Cache struct {
	store objstore.Store

	mu       sync.Mutex
	computed bool
	graph    *Graph
	err      error
}

// NewCache wraps a store with on-demand, memoized graph construction.
func NewCache(store objstore.Store) *Cache {
	return &Cache{store: store}
}

// Graph returns the (possibly cached) graph, building it on first call.
func (c *Cache) Graph() (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.computed {
		c.graph, c.err = Build(c.store)
		c.computed = true
	}
	return c.graph, c.err
}

// Computed reports whether the graph has already been built.
func (c *Cache) Computed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.computed
}
