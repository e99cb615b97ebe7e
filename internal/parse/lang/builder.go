package lang

import (
	"github.com/indexgraph/codegraph/internal/hash"
	"github.com/indexgraph/codegraph/internal/model"
)

// extractionBuilder accumulates the entity/relation/chunk graph for a single
// file. Every parser in this package funnels its findings through one of
// these so chunk construction (id derivation, hashing, has_implementation
// bookkeeping) happens in exactly one place.
type extractionBuilder struct {
	filePath string
	ext      *model.FileExtraction
}

func newExtractionBuilder(filePath string) *extractionBuilder {
	return &extractionBuilder{
		filePath: filePath,
		ext:      &model.FileExtraction{},
	}
}

// addEntity registers an entity and its metadata chunk. signature+summary
// become the metadata chunk's content; observations are copied onto the
// entity so C4 can append more later without losing what C3 already knows.
func (b *extractionBuilder) addEntity(name string, typ model.EntityType, span model.LineSpan, signature string, observations ...string) {
	hasImpl := false
	b.ext.Entities = append(b.ext.Entities, model.Entity{
		Name:         name,
		Type:         typ,
		FilePath:     b.filePath,
		Span:         span,
		Observations: observations,
	})

	meta := model.Chunk{
		ID:         model.ChunkID(name, model.ChunkKindMetadata),
		Kind:       model.ChunkKindMetadata,
		EntityType: typ,
		EntityName: name,
		FilePath:   b.filePath,
		Span:       span,
		Content:    signature,
	}
	meta.ContentHash = hash.Content(meta.Content)
	// has_implementation is filled in by addImplementation, which runs after
	// addEntity for the same entity within a single parser visit; chunks are
	// appended in parse order so we patch in place once we know.
	meta.HasImplementation = hasImpl
	b.ext.MetadataChunks = append(b.ext.MetadataChunks, meta)
}

// addImplementation adds the full-source-span chunk for an entity that has a
// body, and flips the corresponding metadata chunk's has_implementation flag.
func (b *extractionBuilder) addImplementation(name string, typ model.EntityType, span model.LineSpan, body string, semantic map[string]any) {
	impl := model.Chunk{
		ID:               model.ChunkID(name, model.ChunkKindImplementation),
		Kind:             model.ChunkKindImplementation,
		EntityType:       typ,
		EntityName:       name,
		FilePath:         b.filePath,
		Span:             span,
		Content:          body,
		SemanticMetadata: semantic,
	}
	impl.ContentHash = hash.Content(impl.Content)
	b.ext.ImplementationChunks = append(b.ext.ImplementationChunks, impl)

	for i := range b.ext.MetadataChunks {
		if b.ext.MetadataChunks[i].EntityName == name {
			b.ext.MetadataChunks[i].HasImplementation = true
			break
		}
	}
}

func (b *extractionBuilder) addRelation(from, to string, typ model.RelationType) {
	b.ext.Relations = append(b.ext.Relations, model.Relation{
		From:     from,
		To:       to,
		Type:     typ,
		FilePath: b.filePath,
	})
}

func (b *extractionBuilder) addDiagnostic(msg string) {
	b.ext.Diagnostics = append(b.ext.Diagnostics, msg)
}

// markStreamed flags this extraction as having gone through the bounded-memory
// streaming pathway rather than a single whole-file parse.
func (b *extractionBuilder) markStreamed() {
	b.ext.Streamed = true
}

func (b *extractionBuilder) build() *model.FileExtraction {
	return b.ext
}
