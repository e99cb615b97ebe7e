package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureCollectionIsIdempotent(t *testing.T) {
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 4, "cosine"))
	require.NoError(t, a.EnsureCollection("chunks", 4, "cosine"))
}

func TestEnsureCollectionRejectsDimMismatch(t *testing.T) {
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 4, ""))
	err := a.EnsureCollection("chunks", 8, "")
	assert.Error(t, err)
}

func TestUpsertAndCount(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 3, ""))

	err := a.Upsert(ctx, "chunks", []Point{
		{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{"content": "alpha", "file_path": "a.go"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Payload: map[string]any{"content": "beta", "file_path": "b.go"}},
	})
	require.NoError(t, err)

	count, err := a.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUpsertIsIdempotentByID(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 3, ""))

	pt := Point{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{"content": "v1"}}
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{pt}))

	pt.Payload["content"] = "v2"
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{pt}))

	count, err := a.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	page, err := a.Scroll(ctx, "chunks", nil, false, nil)
	require.NoError(t, err)
	require.Len(t, page.Points, 1)
	assert.Equal(t, "v2", page.Points[0].Payload["content"])
}

func TestDeleteRemovesPoint(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 3, ""))
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{}}}))

	require.NoError(t, a.Delete(ctx, "chunks", []string{"a"}))

	count, err := a.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteByFilterMatchesPayload(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 3, ""))
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{
		{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{"file_path": "a.go", "type": "chunk"}},
		{ID: "b", Vector: []float32{0, 1, 0}, Payload: map[string]any{"file_path": "b.go", "type": "chunk"}},
	}))

	require.NoError(t, a.DeleteByFilter(ctx, "chunks", Filter{"file_path": "a.go"}))

	count, err := a.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestScrollPaginates(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 2, ""))

	for i := 0; i < 3; i++ {
		id := string(rune('a' + i))
		require.NoError(t, a.Upsert(ctx, "chunks", []Point{{ID: id, Vector: []float32{1, 0}, Payload: map[string]any{}}}))
	}

	page, err := a.Scroll(ctx, "chunks", nil, false, nil)
	require.NoError(t, err)
	assert.Len(t, page.Points, 3)
	assert.Nil(t, page.Next)
}

func TestScrollOmitsVectorUnlessRequested(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 3, ""))
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{{ID: "a", Vector: []float32{1, 0, 0}, Payload: map[string]any{}}}))

	page, err := a.Scroll(ctx, "chunks", nil, false, nil)
	require.NoError(t, err)
	assert.Nil(t, page.Points[0].Vector)

	page, err = a.Scroll(ctx, "chunks", nil, true, nil)
	require.NoError(t, err)
	assert.NotNil(t, page.Points[0].Vector)
}

func TestQueryReturnsNearestNeighbor(t *testing.T) {
	ctx := context.Background()
	a := New()
	require.NoError(t, a.EnsureCollection("chunks", 2, ""))
	require.NoError(t, a.Upsert(ctx, "chunks", []Point{
		{ID: "close", Vector: []float32{1, 0}, Payload: map[string]any{"content": "close"}},
		{ID: "far", Vector: []float32{0, 1}, Payload: map[string]any{"content": "far"}},
	}))

	results, err := a.Query(ctx, "chunks", []float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "close", results[0].ID)
}
