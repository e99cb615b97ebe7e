package observe

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
)

func newFuncExtraction(name, body string) *model.FileExtraction {
	return newFuncExtractionWithComplexity(name, body, 0)
}

func newFuncExtractionWithComplexity(name, body string, complexityNodes int) *model.FileExtraction {
	span := model.LineSpan{Start: 1, End: len(strings.Split(body, "\n"))}
	return &model.FileExtraction{
		Entities: []model.Entity{
			{Name: name, Type: model.EntityFunction, FilePath: "f.go", Span: span},
		},
		MetadataChunks: []model.Chunk{
			{ID: name + "::metadata", Kind: model.ChunkKindMetadata, EntityName: name, Content: "func " + name + "()"},
		},
		ImplementationChunks: []model.Chunk{
			{
				ID: name + "::implementation", Kind: model.ChunkKindImplementation, EntityName: name, Content: body,
				SemanticMetadata: map[string]any{"complexity_nodes": complexityNodes},
			},
		},
	}
}

func TestEnrichTagsComplexityAndParams(t *testing.T) {
	ext := newFuncExtraction("widget.go::Build", "func Build(a, b int) error {\n  return nil\n}")
	Enrich(ext)

	obs := ext.Entities[0].Observations
	require.NotEmpty(t, obs)
	assert.Contains(t, obs, "params:2")
	assert.Contains(t, obs, "complexity:low")
	assert.Contains(t, obs, "async:false")
}

func TestEnrichComplexityReflectsBranchCountNotLineCount(t *testing.T) {
	// A one-line body tagged with a high branch count must still bucket as
	// high: complexity comes from the parser's AST/parse-tree tally, not
	// from how many source lines the body happens to span.
	short := newFuncExtractionWithComplexity("widget.go::Dense", "func Dense() { ... }", 10)
	Enrich(short)
	assert.Contains(t, short.Entities[0].Observations, "complexity:high")

	// A long body tagged with zero branches must still bucket as low.
	var lines []string
	for i := 0; i < 50; i++ {
		lines = append(lines, "  doStep()")
	}
	long := newFuncExtractionWithComplexity("widget.go::Long", "func Long() {\n"+strings.Join(lines, "\n")+"\n}", 0)
	Enrich(long)
	assert.Contains(t, long.Entities[0].Observations, "complexity:low")
}

func TestEnrichTagsCallsRaisesCatches(t *testing.T) {
	ext := newFuncExtraction("svc.go::Run", "func Run() {\n  doWork()\n}")
	ext.Relations = []model.Relation{
		{From: "svc.go::Run", To: "doWork", Type: model.RelationCalls},
		{From: "svc.go::Run", To: "ValueError", Type: model.RelationRaises},
		{From: "svc.go::Run", To: "IOError", Type: model.RelationCatches},
	}
	Enrich(ext)

	obs := ext.Entities[0].Observations
	assert.Contains(t, obs, "calls:doWork")
	assert.Contains(t, obs, "raises:ValueError")
	assert.Contains(t, obs, "catches:IOError")
}

func TestEnrichMatchesPatternBySuffix(t *testing.T) {
	ext := newFuncExtraction("widget.go::NewWidgetFactory", "func NewWidgetFactory() {}")
	Enrich(ext)

	assert.Contains(t, ext.Entities[0].Observations, "pattern:factory")
}

func TestEnrichRehashesMetadataChunk(t *testing.T) {
	ext := newFuncExtraction("widget.go::Build", "func Build() {}")
	originalHash := ""
	Enrich(ext)
	for _, c := range ext.MetadataChunks {
		if c.EntityName == "widget.go::Build" {
			assert.NotEqual(t, originalHash, c.ContentHash)
			assert.Contains(t, c.Content, "complexity:")
			require.NotNil(t, c.SemanticMetadata)
			assert.NotEmpty(t, c.SemanticMetadata["observations"])
		}
	}
}

func TestEnrichSkipsNonFunctionEntities(t *testing.T) {
	ext := &model.FileExtraction{
		Entities: []model.Entity{
			{Name: "f.go::Widget", Type: model.EntityClass, FilePath: "f.go", Span: model.LineSpan{Start: 1, End: 3}},
		},
	}
	Enrich(ext)
	assert.Empty(t, ext.Entities[0].Observations)
}
