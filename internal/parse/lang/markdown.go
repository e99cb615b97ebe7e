package lang

import (
	"context"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// markdownParser is the "header-delimited document" textual family.
// Sections are delimited by ATX headers (# .. ######); each section becomes
// a documentation entity spanning from its header to the line before the
// next header at the same or shallower depth.
type markdownParser struct{}

// NewMarkdown returns the Markdown parser (.md, .markdown).
func NewMarkdown() *markdownParser { return &markdownParser{} }

func (p *markdownParser) SupportsStreaming() bool   { return false }
func (p *markdownParser) EmitsImplementation() bool { return true }

type mdHeader struct {
	level int
	title string
	line  int
}

func (p *markdownParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	lines := strings.Split(string(source), "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	fileSpan := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, fileSpan, "file "+filePath)

	var headers []mdHeader
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		level := 0
		for level < len(trimmed) && trimmed[level] == '#' {
			level++
		}
		if level == 0 || level > 6 {
			continue
		}
		if level < len(trimmed) && trimmed[level] != ' ' {
			continue
		}
		title := strings.TrimSpace(trimmed[level:])
		headers = append(headers, mdHeader{level: level, title: title, line: i + 1})
	}

	if len(headers) == 0 {
		return b.build(), nil
	}

	scope := newScopeNamer()
	for idx, h := range headers {
		end := len(lines)
		for j := idx + 1; j < len(headers); j++ {
			if headers[j].level <= h.level {
				end = headers[j].line - 1
				break
			}
		}
		title := h.title
		if title == "" {
			title = "section"
		}
		name := qualified(filePath, scope.qualify(title, h.line))
		span := model.LineSpan{Start: h.line, End: end}
		b.addEntity(name, model.EntityDocumentation, span, strings.Repeat("#", h.level)+" "+title)
		body := extractLines(lines, span.Start, span.End)
		b.addImplementation(name, model.EntityDocumentation, span, body, nil)
		b.addRelation(fileEntity, name, model.RelationContains)
	}

	return b.build(), nil
}
