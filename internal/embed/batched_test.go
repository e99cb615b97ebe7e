package embed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorEmbedsDistinctChunks(t *testing.T) {
	provider := NewMockProvider()
	costs := &CostAccumulator{Provider: "mock", Model: "mock"}
	coord := NewCoordinator(provider, costs)

	chunks := []ChunkInput{
		{ChunkID: "a::metadata", Content: "func a()", ContentHash: "hash-a"},
		{ChunkID: "b::metadata", Content: "func b()", ContentHash: "hash-b"},
	}

	vectors, err := coord.Embed(context.Background(), chunks, EmbedModePassage)
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
	assert.NotNil(t, vectors["hash-a"])
	assert.NotNil(t, vectors["hash-b"])
}

func TestCoordinatorDeduplicatesByContentHash(t *testing.T) {
	provider := NewMockProvider()
	coord := NewCoordinator(provider, nil)

	chunks := []ChunkInput{
		{ChunkID: "a::metadata", Content: "func a()", ContentHash: "hash-a"},
		{ChunkID: "a::implementation", Content: "func a()", ContentHash: "hash-a"},
	}

	vectors, err := coord.Embed(context.Background(), chunks, EmbedModePassage)
	require.NoError(t, err)
	assert.Len(t, vectors, 1)
}

func TestCoordinatorAccumulatesCost(t *testing.T) {
	provider := NewMockProvider()
	costs := &CostAccumulator{Provider: "openai", Model: "text-embedding-3-small"}
	coord := NewCoordinator(provider, costs)

	chunks := []ChunkInput{{ChunkID: "a", Content: "hello world", ContentHash: "hash-a"}}
	_, err := coord.Embed(context.Background(), chunks, EmbedModePassage)
	require.NoError(t, err)

	assert.Greater(t, costs.TokensUsed, int64(0))
}

func TestCoordinatorWrapsHardFailureAsEmbeddingError(t *testing.T) {
	provider := NewMockProvider()
	provider.SetEmbedError(errors.New("provider unavailable"))
	coord := NewCoordinator(provider, nil)

	chunks := []ChunkInput{{ChunkID: "a", Content: "x", ContentHash: "hash-a"}}
	_, err := coord.Embed(context.Background(), chunks, EmbedModePassage)
	require.Error(t, err)

	var embedErr *EmbeddingError
	assert.ErrorAs(t, err, &embedErr)
	assert.Equal(t, "a", embedErr.ChunkID)
}

func TestCoordinatorEmptyInputReturnsEmptyMap(t *testing.T) {
	coord := NewCoordinator(NewMockProvider(), nil)
	vectors, err := coord.Embed(context.Background(), nil, EmbedModePassage)
	require.NoError(t, err)
	assert.Empty(t, vectors)
}
