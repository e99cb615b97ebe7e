// Package graphview implements C10: two read-only projections over the
// vector store's chunk/relation points — a paged global graph and an
// entity-centric neighbor view. Both read from C8 (internal/store); the
// entity-centric view caches neighbor id lists with maypok86/otter, and
// BuildProjection turns a global page into an in-memory dominikbraun/graph.
package graphview

import (
	"context"
	"fmt"

	dgraph "github.com/dominikbraun/graph"
	"github.com/maypok86/otter"

	"github.com/indexgraph/codegraph/internal/model"
	"github.com/indexgraph/codegraph/internal/store"
)

// maxNeighborCacheWeight bounds the entity-centric neighbor cache.
const maxNeighborCacheWeight = 10 * 1024 * 1024

// Node is one vertex in the projected graph: an entity's metadata chunk,
// trimmed to what a consumer needs to render or traverse further.
type Node struct {
	EntityName string
	EntityType model.EntityType
	FilePath   string
	Span       model.LineSpan
	Content    string
}

// Edge is one relation between two entity names.
type Edge struct {
	From string
	To   string
	Type model.RelationType
}

// GlobalPage is one page of the global graph projection.
type GlobalPage struct {
	Nodes  []Node
	Edges  []Edge
	Cursor *store.Cursor
}

// EntityView is the entity-centric projection: one entity's node, its direct
// relations, and its distance-1 (or distance-2) neighbor nodes.
type EntityView struct {
	Entity    Node
	Incoming  []Edge
	Outgoing  []Edge
	Neighbors []Node
}

// View serves both C10 projections against one vector store collection.
type View struct {
	adapter    *store.Adapter
	collection string

	neighborCache otter.Cache[string, []string]
}

// New builds a View over adapter's collection, with a neighbor cache sized
// for neighbor-id slices.
func New(adapter *store.Adapter, collection string) (*View, error) {
	cache, err := otter.MustBuilder[string, []string](maxNeighborCacheWeight).
		Cost(func(key string, value []string) uint32 {
			return uint32(len(value)*64 + 1)
		}).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("graphview: build neighbor cache: %w", err)
	}

	return &View{adapter: adapter, collection: collection, neighborCache: cache}, nil
}

// Global returns one page of the global graph: every chunk-type=metadata
// point as a Node, every relation-type point as an Edge, filtered by
// entityTypes/relationTypes when non-empty.
func (v *View) Global(ctx context.Context, entityTypes []model.EntityType, relationTypes []model.RelationType, cursor *store.Cursor) (*GlobalPage, error) {
	page, err := v.adapter.Scroll(ctx, v.collection, nil, false, cursor)
	if err != nil {
		return nil, fmt.Errorf("graphview: scroll: %w", err)
	}

	out := &GlobalPage{Cursor: page.Next}
	for _, pt := range page.Points {
		switch payloadType(pt.Payload) {
		case "chunk":
			if fmt.Sprint(pt.Payload["chunk_type"]) != "metadata" {
				continue
			}
			node := nodeFromPayload(pt.Payload)
			if matchesEntityType(node.EntityType, entityTypes) {
				out.Nodes = append(out.Nodes, node)
			}
		case "relation":
			edge := edgeFromPayload(pt.Payload)
			if matchesRelationType(edge.Type, relationTypes) {
				out.Edges = append(out.Edges, edge)
			}
		}
	}
	return out, nil
}

// EntityCentric returns entityName's metadata chunk, its incoming/outgoing
// relations, and the metadata chunks of its distance-1 or distance-2
// neighbors.
func (v *View) EntityCentric(ctx context.Context, entityName string, depth int) (*EntityView, error) {
	if depth <= 0 {
		depth = 1
	}
	if depth > 2 {
		depth = 2
	}

	entityPage, err := v.adapter.Scroll(ctx, v.collection, store.Filter{"entity_name": entityName, "chunk_type": "metadata"}, false, nil)
	if err != nil {
		return nil, fmt.Errorf("graphview: scroll entity: %w", err)
	}
	if len(entityPage.Points) == 0 {
		return nil, fmt.Errorf("graphview: entity %q not found", entityName)
	}
	view := &EntityView{Entity: nodeFromPayload(entityPage.Points[0].Payload)}

	outgoingPage, err := v.adapter.Scroll(ctx, v.collection, store.Filter{"from_entity": entityName}, false, nil)
	if err != nil {
		return nil, fmt.Errorf("graphview: scroll outgoing: %w", err)
	}
	incomingPage, err := v.adapter.Scroll(ctx, v.collection, store.Filter{"to_entity": entityName}, false, nil)
	if err != nil {
		return nil, fmt.Errorf("graphview: scroll incoming: %w", err)
	}

	frontier := make(map[string]bool)
	for _, pt := range outgoingPage.Points {
		e := edgeFromPayload(pt.Payload)
		view.Outgoing = append(view.Outgoing, e)
		frontier[e.To] = true
	}
	for _, pt := range incomingPage.Points {
		e := edgeFromPayload(pt.Payload)
		view.Incoming = append(view.Incoming, e)
		frontier[e.From] = true
	}
	delete(frontier, entityName)

	neighborIDs := v.neighborIDs(entityName, frontier)
	if depth == 2 {
		for _, id := range neighborIDs {
			for _, nb := range v.expandOneHop(ctx, id) {
				if nb != entityName {
					frontier[nb] = true
				}
			}
		}
		neighborIDs = mapKeys(frontier)
	}

	for _, id := range neighborIDs {
		nbPage, err := v.adapter.Scroll(ctx, v.collection, store.Filter{"entity_name": id, "chunk_type": "metadata"}, false, nil)
		if err != nil || len(nbPage.Points) == 0 {
			continue
		}
		view.Neighbors = append(view.Neighbors, nodeFromPayload(nbPage.Points[0].Payload))
	}

	return view, nil
}

// neighborIDs resolves and caches the distance-1 neighbor id list for
// entityName so repeated entity-centric queries against a hot entity don't
// re-walk its relations every time.
func (v *View) neighborIDs(entityName string, frontier map[string]bool) []string {
	ids := mapKeys(frontier)
	v.neighborCache.Set(entityName, ids)
	return ids
}

// expandOneHop returns entityName's direct outgoing+incoming neighbor ids,
// using the cache populated by neighborIDs when available.
func (v *View) expandOneHop(ctx context.Context, entityName string) []string {
	if cached, ok := v.neighborCache.Get(entityName); ok {
		return cached
	}

	outgoing, _ := v.adapter.Scroll(ctx, v.collection, store.Filter{"from_entity": entityName}, false, nil)
	incoming, _ := v.adapter.Scroll(ctx, v.collection, store.Filter{"to_entity": entityName}, false, nil)

	seen := make(map[string]bool)
	for _, pt := range outgoing.Points {
		seen[fmt.Sprint(pt.Payload["to_entity"])] = true
	}
	for _, pt := range incoming.Points {
		seen[fmt.Sprint(pt.Payload["from_entity"])] = true
	}
	ids := mapKeys(seen)
	v.neighborCache.Set(entityName, ids)
	return ids
}

// BuildProjection materializes a dominikbraun/graph directed graph from a
// global page, for callers that want BFS/shortest-path traversal instead of
// the flat node/edge lists Global returns.
func BuildProjection(page *GlobalPage) dgraph.Graph[string, Node] {
	g := dgraph.New(func(n Node) string { return n.EntityName }, dgraph.Directed())
	for _, n := range page.Nodes {
		_ = g.AddVertex(n)
	}
	for _, e := range page.Edges {
		_ = g.AddEdge(e.From, e.To)
	}
	return g
}

func payloadType(payload map[string]any) string {
	return fmt.Sprint(payload["type"])
}

func nodeFromPayload(payload map[string]any) Node {
	span := model.LineSpan{}
	if v, ok := payload["line_start"].(int); ok {
		span.Start = v
	}
	if v, ok := payload["line_end"].(int); ok {
		span.End = v
	}
	return Node{
		EntityName: fmt.Sprint(payload["entity_name"]),
		EntityType: model.EntityType(fmt.Sprint(payload["entity_type"])),
		FilePath:   fmt.Sprint(payload["file_path"]),
		Span:       span,
		Content:    fmt.Sprint(payload["content"]),
	}
}

func edgeFromPayload(payload map[string]any) Edge {
	return Edge{
		From: fmt.Sprint(payload["from_entity"]),
		To:   fmt.Sprint(payload["to_entity"]),
		Type: model.RelationType(fmt.Sprint(payload["relation_type"])),
	}
}

func matchesEntityType(t model.EntityType, allowed []model.EntityType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func matchesRelationType(t model.RelationType, allowed []model.RelationType) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == t {
			return true
		}
	}
	return false
}

func mapKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
