package lang

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
)

func TestTextParser_SmallFileIsASingleWholeFileChunk(t *testing.T) {
	p := NewText()
	source := []byte("line one\nline two\nline three")

	ext, err := p.Parse(context.Background(), "notes.txt", source)
	require.NoError(t, err)

	assert.False(t, ext.Streamed)
	require.Len(t, ext.ImplementationChunks, 1)
	assert.Equal(t, string(source), ext.ImplementationChunks[0].Content)

	file, ok := findEntity(ext.Entities, "notes.txt")
	require.True(t, ok)
	assert.Equal(t, model.EntityFile, file.Type)
}

func TestTextParser_LargeFileStreamsIntoFixedSizeChunks(t *testing.T) {
	p := NewText()
	lines := make([]string, textChunkLines*2+5)
	for i := range lines {
		lines[i] = strings.Repeat("x", 4096)
	}
	source := []byte(strings.Join(lines, "\n"))
	require.Greater(t, len(source), streamingThresholdBytes)

	ext, err := p.Parse(context.Background(), "big.txt", source)
	require.NoError(t, err)

	assert.True(t, ext.Streamed)
	require.Len(t, ext.ImplementationChunks, 3)

	first := ext.ImplementationChunks[0]
	assert.Equal(t, "big.txt::chunk@1", first.EntityName)
	assert.Equal(t, model.EntityTextChunk, first.EntityType)

	for _, c := range ext.ImplementationChunks {
		assert.True(t, hasRelation(ext.Relations, "big.txt", c.EntityName, model.RelationContains))
	}
}
