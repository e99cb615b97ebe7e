package lang

import (
	"context"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// configParser is the "line-oriented config" textual family — YAML, TOML,
// .ini, .env and similar key: value or key=value documents. It emits one
// variable entity per unindented key (prefixed with its [section], if any);
// indented (nested) keys get no entity of their own.
type configParser struct{}

// NewConfig returns the line-oriented config parser (.yaml, .yml, .toml,
// .ini, .env, .cfg).
func NewConfig() *configParser { return &configParser{} }

func (p *configParser) SupportsStreaming() bool   { return false }
func (p *configParser) EmitsImplementation() bool { return false }

func (p *configParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	lines := strings.Split(string(source), "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	fileSpan := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, fileSpan, "file "+filePath)

	scope := newScopeNamer()
	var section string
	for i, raw := range lines {
		line := strings.TrimRight(raw, " \t\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section = strings.Trim(trimmed, "[]")
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent > 0 {
			// nested key, already covered by its parent entity
			continue
		}

		key, val, ok := splitKeyValue(trimmed)
		if !ok {
			continue
		}
		qualifiedKey := key
		if section != "" {
			qualifiedKey = section + "." + key
		}
		name := qualified(filePath, scope.qualify(qualifiedKey, i+1))
		span := model.LineSpan{Start: i + 1, End: i + 1}
		summary := qualifiedKey + ": " + val
		b.addEntity(name, model.EntityVariable, span, summary)
		b.addRelation(fileEntity, name, model.RelationContains)
	}

	return b.build(), nil
}

// splitKeyValue recognizes "key: value", "key = value" and "key=value"
// forms, the three separators common to YAML/TOML/.ini/.env files.
func splitKeyValue(line string) (key, val string, ok bool) {
	if idx := strings.Index(line, ":"); idx > 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	if idx := strings.Index(line, "="); idx > 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	return "", "", false
}
