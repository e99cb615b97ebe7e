package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// jsonParser is the "key-value tree language" family. No tree-sitter-json
// grammar is available, so this decodes the whole file with
// encoding/json.Unmarshal (stdlib) instead — justified in DESIGN.md as a case
// where no third-party
// parser from the corpus could serve.
type jsonParser struct{}

// NewJSON returns the JSON parser (.json).
func NewJSON() *jsonParser { return &jsonParser{} }

func (p *jsonParser) SupportsStreaming() bool   { return false }
func (p *jsonParser) EmitsImplementation() bool { return true }

func (p *jsonParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	var root any
	if err := json.Unmarshal(source, &root); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}

	lines := strings.Split(string(source), "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	span := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, span, "file "+filePath)
	b.addImplementation(fileEntity, model.EntityFile, span, string(source), nil)

	if obj, ok := root.(map[string]any); ok {
		for _, key := range sortedKeys(obj) {
			name := qualified(filePath, key)
			entityType := model.EntityVariable
			summary := fmt.Sprintf("%s: %s", key, summarizeJSON(obj[key]))
			b.addEntity(name, entityType, span, summary)
			b.addRelation(fileEntity, name, model.RelationContains)
		}
	}

	return b.build(), nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

func summarizeJSON(v any) string {
	switch val := v.(type) {
	case map[string]any:
		return fmt.Sprintf("object{%d keys}", len(val))
	case []any:
		return fmt.Sprintf("array[%d]", len(val))
	case string:
		return "string"
	case bool:
		return "bool"
	case nil:
		return "null"
	default:
		return "number"
	}
}
