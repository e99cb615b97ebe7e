package lang

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
)

func TestJSONParser_ExtractsFileAndTopLevelKeysInSortedOrder(t *testing.T) {
	p := NewJSON()
	source := []byte(`{"zebra": 1, "apple": {"nested": true}, "mango": [1, 2, 3]}`)

	ext, err := p.Parse(context.Background(), "config.json", source)
	require.NoError(t, err)

	file, ok := findEntity(ext.Entities, "config.json")
	require.True(t, ok)
	assert.Equal(t, model.EntityFile, file.Type)

	var names []string
	for _, e := range ext.Entities {
		if e.Name != "config.json" {
			names = append(names, e.Name)
		}
	}
	assert.Equal(t, []string{
		"config.json::apple",
		"config.json::mango",
		"config.json::zebra",
	}, names)

	for _, name := range names {
		assert.True(t, hasRelation(ext.Relations, "config.json", name, model.RelationContains))
	}
}

func TestJSONParser_RejectsInvalidJSON(t *testing.T) {
	p := NewJSON()
	_, err := p.Parse(context.Background(), "broken.json", []byte(`{not valid`))
	assert.Error(t, err)
}

func TestJSONParser_EmitsWholeFileImplementationChunk(t *testing.T) {
	p := NewJSON()
	source := []byte(`{"a": 1}`)
	ext, err := p.Parse(context.Background(), "a.json", source)
	require.NoError(t, err)

	require.Len(t, ext.ImplementationChunks, 1)
	assert.Equal(t, string(source), ext.ImplementationChunks[0].Content)
	assert.NotEmpty(t, ext.ImplementationChunks[0].ContentHash)
}
