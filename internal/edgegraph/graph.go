// Package edgegraph indexes element edges by endpoint and direction and
// performs validated edge mutations.
package edgegraph

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/workgrid/internal/domain"
	"github.com/alexanderramin/workgrid/internal/entitystore"
)

// Adjacency is the edge set touching one element.
type Adjacency struct {
	Incoming []domain.Edge
	Outgoing []domain.Edge
}

type bucket struct {
	incoming []domain.Edge
	outgoing []domain.Edge
}

// Graph answers per-element lookups in O(1) from an index that is rebuilt
// lazily whenever the store's edge version moves.
type Graph struct {
	store *entitystore.Store

	mu      sync.Mutex
	version uint64
	built   bool
	byID    map[string]domain.Edge
	index   map[string]*bucket
}

func New(store *entitystore.Store) *Graph {
	return &Graph{store: store}
}

func (g *Graph) ensureIndex() {
	v := g.store.EdgesVersion()
	if g.built && v == g.version {
		return
	}
	edges := g.store.Edges()
	g.byID = make(map[string]domain.Edge, len(edges))
	g.index = make(map[string]*bucket)
	for _, e := range edges {
		g.byID[e.ID] = e
		g.at(e.FromID).outgoing = append(g.at(e.FromID).outgoing, e)
		g.at(e.ToID).incoming = append(g.at(e.ToID).incoming, e)
	}
	g.version, g.built = v, true
}

func (g *Graph) at(id string) *bucket {
	b, ok := g.index[id]
	if !ok {
		b = &bucket{}
		g.index[id] = b
	}
	return b
}

// EdgesFor returns copies of the edges entering and leaving elementID.
func (g *Graph) EdgesFor(elementID string) Adjacency {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureIndex()
	b, ok := g.index[elementID]
	if !ok {
		return Adjacency{}
	}
	return Adjacency{Incoming: cloneEdges(b.incoming), Outgoing: cloneEdges(b.outgoing)}
}

// Edge looks up one edge by id.
func (g *Graph) Edge(id string) (domain.Edge, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureIndex()
	e, ok := g.byID[id]
	return e.Clone(), ok
}

func cloneEdges(in []domain.Edge) []domain.Edge {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Edge, len(in))
	for i, e := range in {
		out[i] = e.Clone()
	}
	return out
}

// CreateEdge validates and persists a new edge, then refreshes the store.
func (g *Graph) CreateEdge(ctx context.Context, from, to string, t domain.EdgeType, attrs map[string]any) (*domain.Edge, error) {
	if from == to {
		return nil, domain.Invalid("to", "an element cannot be linked to itself")
	}
	if !domain.ValidEdgeTypes[string(t)] {
		return nil, domain.Invalid("type", "unknown edge type %q", t)
	}
	for _, id := range []string{from, to} {
		if !g.store.HasElement(id) {
			return nil, domain.NotFound("element", id)
		}
	}
	for _, e := range g.EdgesFor(from).Outgoing {
		if e.ToID == to && e.Type == t {
			return nil, domain.Invalid("edge", "%s edge %s -> %s already exists", t, from, to)
		}
	}

	created, err := g.store.Collaborator().CreateEdge(ctx, domain.EdgePatch{FromID: from, ToID: to, Type: t, Attributes: attrs})
	if err != nil {
		return nil, fmt.Errorf("create edge: %w", err)
	}
	if err := g.store.ReloadEdges(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteEdge removes an edge by id, then refreshes the store.
func (g *Graph) DeleteEdge(ctx context.Context, id string) error {
	if _, ok := g.Edge(id); !ok {
		return domain.NotFound("edge", id)
	}
	if err := g.store.Collaborator().DeleteEdge(ctx, id); err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	return g.store.ReloadEdges(ctx)
}

// Blockers returns the incoming depends_on edges whose source is not done
// according to isDone. Sources missing from the store are reported and
// skipped.
func (g *Graph) Blockers(elementID string, isDone func(*domain.Element) bool) []domain.Edge {
	var out []domain.Edge
	for _, e := range g.EdgesFor(elementID).Incoming {
		if e.Type != domain.EdgeDependsOn {
			continue
		}
		src, ok := g.store.Element(e.FromID)
		if !ok {
			g.store.Warn(domain.Warning{
				Kind:    domain.WarnUnresolvedEdge,
				Subject: e.ID,
				Detail:  fmt.Sprintf("dependency %s is not loaded", e.FromID),
			})
			continue
		}
		if !isDone(src) {
			out = append(out, e)
		}
	}
	return out
}

// Upstream returns every element id reachable backwards from elementID over
// edges of type t, nearest first. Cycles are tolerated.
func (g *Graph) Upstream(elementID string, t domain.EdgeType) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureIndex()

	visited := map[string]bool{elementID: true}
	queue := []string{elementID}
	var out []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		b, ok := g.index[cur]
		if !ok {
			continue
		}
		for _, e := range b.incoming {
			if e.Type != t || visited[e.FromID] {
				continue
			}
			visited[e.FromID] = true
			out = append(out, e.FromID)
			queue = append(queue, e.FromID)
		}
	}
	return out
}

// HasCycle reports whether edges of type t form a directed cycle, returning
// one element on it.
func (g *Graph) HasCycle(t domain.EdgeType) (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureIndex()

	const (
		white = iota
		grey
		black
	)
	color := map[string]int{}
	var found string

	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		if b, ok := g.index[id]; ok {
			for _, e := range b.outgoing {
				if e.Type != t {
					continue
				}
				switch color[e.ToID] {
				case grey:
					found = e.ToID
					return true
				case white:
					if visit(e.ToID) {
						return true
					}
				}
			}
		}
		color[id] = black
		return false
	}

	for _, e := range g.store.Edges() {
		if e.Type == t && color[e.FromID] == white && visit(e.FromID) {
			return found, true
		}
	}
	return "", false
}
