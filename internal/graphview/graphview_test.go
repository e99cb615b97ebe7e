package graphview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/store"
)

func seedGraph(t *testing.T) (*store.Adapter, string) {
	t.Helper()
	ctx := context.Background()
	adapter := store.New()
	require.NoError(t, adapter.EnsureCollection("chunks", 2, ""))

	points := []store.Point{
		{ID: "a::metadata", Vector: []float32{1, 0}, Payload: map[string]any{
			"type": "chunk", "chunk_type": "metadata", "entity_name": "a", "entity_type": "function",
			"file_path": "f.go", "line_start": 1, "line_end": 5, "content": "func a()",
		}},
		{ID: "b::metadata", Vector: []float32{0, 1}, Payload: map[string]any{
			"type": "chunk", "chunk_type": "metadata", "entity_name": "b", "entity_type": "function",
			"file_path": "f.go", "line_start": 6, "line_end": 10, "content": "func b()",
		}},
		{ID: "c::metadata", Vector: []float32{1, 1}, Payload: map[string]any{
			"type": "chunk", "chunk_type": "metadata", "entity_name": "c", "entity_type": "function",
			"file_path": "f.go", "line_start": 11, "line_end": 15, "content": "func c()",
		}},
		{ID: "rel-a-b", Payload: map[string]any{
			"type": "relation", "from_entity": "a", "to_entity": "b", "relation_type": "calls",
		}},
		{ID: "rel-b-c", Payload: map[string]any{
			"type": "relation", "from_entity": "b", "to_entity": "c", "relation_type": "calls",
		}},
	}
	require.NoError(t, adapter.Upsert(ctx, "chunks", points))
	return adapter, "chunks"
}

func TestGlobalReturnsNodesAndEdges(t *testing.T) {
	adapter, collection := seedGraph(t)
	view, err := New(adapter, collection)
	require.NoError(t, err)

	page, err := view.Global(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, page.Nodes, 3)
	assert.Len(t, page.Edges, 2)
}

func TestEntityCentricDepthOneFindsDirectNeighbor(t *testing.T) {
	adapter, collection := seedGraph(t)
	view, err := New(adapter, collection)
	require.NoError(t, err)

	result, err := view.EntityCentric(context.Background(), "b", 1)
	require.NoError(t, err)
	assert.Equal(t, "b", result.Entity.EntityName)
	assert.Len(t, result.Incoming, 1)
	assert.Len(t, result.Outgoing, 1)

	var names []string
	for _, n := range result.Neighbors {
		names = append(names, n.EntityName)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, names)
}

func TestEntityCentricDepthTwoReachesTransitiveNeighbor(t *testing.T) {
	adapter, collection := seedGraph(t)
	view, err := New(adapter, collection)
	require.NoError(t, err)

	result, err := view.EntityCentric(context.Background(), "a", 2)
	require.NoError(t, err)

	var names []string
	for _, n := range result.Neighbors {
		names = append(names, n.EntityName)
	}
	assert.Contains(t, names, "b")
	assert.Contains(t, names, "c")
}

func TestEntityCentricUnknownEntityErrors(t *testing.T) {
	adapter, collection := seedGraph(t)
	view, err := New(adapter, collection)
	require.NoError(t, err)

	_, err = view.EntityCentric(context.Background(), "missing", 1)
	assert.Error(t, err)
}
