package observe

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/indexgraph/codegraph/internal/hash"
	"github.com/indexgraph/codegraph/internal/model"
)

// Enrich walks ext's entities post-parse and appends a fixed tag schema to
// each entity's observation list, then folds the same tags into the
// entity's metadata chunk content and rehashes it — the metadata chunk's
// content_hash must reflect what actually got embedded, so any tag added
// here has to flow through before the hash is taken.
//
// This is a single pass over already-parsed extraction results: tags get
// appended, nothing is re-parsed.
func Enrich(ext *model.FileExtraction) {
	implByName := make(map[string]*model.Chunk, len(ext.ImplementationChunks))
	for i := range ext.ImplementationChunks {
		c := &ext.ImplementationChunks[i]
		implByName[c.EntityName] = c
	}

	callsByOwner := make(map[string][]string)
	raisesByOwner := make(map[string][]string)
	catchesByOwner := make(map[string][]string)
	decoratorsByOwner := make(map[string][]string)
	for _, rel := range ext.Relations {
		switch rel.Type {
		case model.RelationCalls:
			callsByOwner[rel.From] = append(callsByOwner[rel.From], rel.To)
		case model.RelationRaises:
			raisesByOwner[rel.From] = append(raisesByOwner[rel.From], rel.To)
		case model.RelationCatches:
			catchesByOwner[rel.From] = append(catchesByOwner[rel.From], rel.To)
		case model.RelationDecorates:
			decoratorsByOwner[rel.From] = append(decoratorsByOwner[rel.From], rel.To)
		}
	}

	for i := range ext.Entities {
		e := &ext.Entities[i]
		if e.Type != model.EntityFunction && e.Type != model.EntityMethod {
			continue
		}

		impl := implByName[e.Name]
		var tags []string

		if purpose := extractPurpose(impl); purpose != "" {
			tags = append(tags, "purpose:"+purpose)
		}

		tags = append(tags, fmt.Sprintf("params:%d", paramCount(impl)))
		tags = append(tags, "returns:"+inferReturn(impl))
		tags = append(tags, "complexity:"+classifyComplexity(complexityNodeCount(impl)))
		tags = append(tags, "async:"+asyncTag(impl))

		for _, callee := range dedupe(callsByOwner[e.Name]) {
			tags = append(tags, "calls:"+callee)
		}
		for _, exc := range dedupe(raisesByOwner[e.Name]) {
			tags = append(tags, "raises:"+exc)
		}
		for _, exc := range dedupe(catchesByOwner[e.Name]) {
			tags = append(tags, "catches:"+exc)
		}
		for _, dec := range dedupe(decoratorsByOwner[e.Name]) {
			tags = append(tags, "decorator:"+dec)
		}
		if pattern := matchPattern(e.Name); pattern != "" {
			tags = append(tags, "pattern:"+pattern)
		}

		e.Observations = append(e.Observations, tags...)
		applyToMetadataChunk(ext, e.Name, tags)
	}
}

func applyToMetadataChunk(ext *model.FileExtraction, entityName string, tags []string) {
	for i := range ext.MetadataChunks {
		c := &ext.MetadataChunks[i]
		if c.EntityName != entityName || len(tags) == 0 {
			continue
		}
		c.Content = c.Content + "\n" + strings.Join(tags, " ")
		c.ContentHash = hash.Content(c.Content)
		if c.SemanticMetadata == nil {
			c.SemanticMetadata = make(map[string]any)
		}
		c.SemanticMetadata["observations"] = tags
		return
	}
}

var docCommentRe = regexp.MustCompile(`(?m)^\s*(//|#|\*|""")\s?(.*)$`)

// extractPurpose takes the first non-empty comment/docstring line found
// anywhere after the first line of an implementation chunk and returns its
// first sentence.
func extractPurpose(impl *model.Chunk) string {
	if impl == nil {
		return ""
	}
	lines := strings.Split(impl.Content, "\n")
	for _, line := range lines[min(len(lines), 1):] {
		m := docCommentRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(strings.Trim(m[2], `"'`))
		if text == "" {
			continue
		}
		return firstSentence(text)
	}
	return ""
}

func firstSentence(s string) string {
	if idx := strings.IndexAny(s, ".!?"); idx > 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

var paramListRe = regexp.MustCompile(`\(([^)]*)\)`)

func paramCount(impl *model.Chunk) int {
	if impl == nil {
		return 0
	}
	firstLine := strings.SplitN(impl.Content, "\n", 2)[0]
	m := paramListRe.FindStringSubmatch(firstLine)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return 0
	}
	parts := strings.Split(m[1], ",")
	return len(parts)
}

func inferReturn(impl *model.Chunk) string {
	if impl == nil {
		return "unknown"
	}
	firstLine := strings.SplitN(impl.Content, "\n", 2)[0]
	switch {
	case strings.Contains(firstLine, "->"):
		after := firstLine[strings.Index(firstLine, "->")+2:]
		return strings.TrimSpace(strings.TrimSuffix(after, ":"))
	case strings.Contains(firstLine, ")") && strings.Contains(firstLine[strings.LastIndex(firstLine, ")"):], " "):
		after := firstLine[strings.LastIndex(firstLine, ")")+1:]
		after = strings.TrimSpace(strings.TrimSuffix(after, "{"))
		if after != "" {
			return after
		}
	}
	return "unknown"
}

// complexityNodeCount reads the branch/loop/boolean-operator tally each
// language parser computes over an entity's AST/parse-tree body and stores
// on the implementation chunk's SemanticMetadata; a chunk with no such
// count (e.g. a non-code entity) contributes zero.
func complexityNodeCount(impl *model.Chunk) int {
	if impl == nil || impl.SemanticMetadata == nil {
		return 0
	}
	if v, ok := impl.SemanticMetadata["complexity_nodes"].(int); ok {
		return v
	}
	return 0
}

func asyncTag(impl *model.Chunk) string {
	if impl == nil {
		return "false"
	}
	if v, ok := impl.SemanticMetadata["async"].(bool); ok && v {
		return "true"
	}
	firstLine := strings.SplitN(impl.Content, "\n", 2)[0]
	if strings.Contains(firstLine, "async ") {
		return "true"
	}
	return "false"
}

func matchPattern(entityName string) string {
	simple := entityName
	if idx := strings.LastIndex(simple, "::"); idx >= 0 {
		simple = simple[idx+2:]
	}
	if singletonNames[simple] {
		return "singleton"
	}
	for _, h := range patternHeuristics {
		if strings.HasSuffix(simple, h.suffix) {
			return h.pattern
		}
	}
	return ""
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
