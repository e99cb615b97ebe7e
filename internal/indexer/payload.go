package indexer

import (
	"fmt"

	"github.com/indexgraph/codegraph/internal/hash"
	"github.com/indexgraph/codegraph/internal/model"
	"github.com/indexgraph/codegraph/internal/store"
)

// chunkPoint converts a chunk into the store.Point payload shape: {type,
// chunk_type, entity_name, entity_type, file_path, line_start, line_end,
// content, content_hash, has_implementation?, semantic_metadata?}. vector is
// nil for chunks not yet embedded (unchanged chunks are never re-upserted,
// so this is always called with a real vector for freshly embedded chunks).
func chunkPoint(c model.Chunk, vector []float32) store.Point {
	payload := map[string]any{
		"type":         "chunk",
		"chunk_type":   string(c.Kind),
		"entity_name":  c.EntityName,
		"entity_type":  string(c.EntityType),
		"file_path":    c.FilePath,
		"line_start":   c.Span.Start,
		"line_end":     c.Span.End,
		"content":      c.Content,
		"content_hash": c.ContentHash,
	}
	if c.Kind == model.ChunkKindMetadata {
		payload["has_implementation"] = c.HasImplementation
	}
	if c.SemanticMetadata != nil {
		payload["semantic_metadata"] = c.SemanticMetadata
	}
	return store.Point{ID: c.ID, Vector: vector, Payload: payload}
}

// relationID derives a stable point id for a relation from its uniqueness
// key (from, to, type, file_path).
func relationID(r model.Relation) string {
	return fmt.Sprintf("relation::%s->%s::%s::%s", r.From, r.To, r.Type, r.FilePath)
}

// relationPoint converts a relation into its store.Point. Relations carry
// no embedding vector; content_hash is derived from the relation's own key
// so every chunk and relation point still carries a content_hash.
func relationPoint(r model.Relation) store.Point {
	key := r.Key()
	return store.Point{
		ID: relationID(r),
		Payload: map[string]any{
			"type":          "relation",
			"relation_type": string(r.Type),
			"from_entity":   r.From,
			"to_entity":     r.To,
			"file_path":     r.FilePath,
			"content":       fmt.Sprintf("%s %s %s", r.From, r.Type, r.To),
			"content_hash":  hash.Content(key),
		},
	}
}
