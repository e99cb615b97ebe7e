package lang

import (
	"context"
	"regexp"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// cssParser is the "style language" family. No tree-sitter-css grammar is
// available, so rules are recovered with a brace-depth scanner instead of a
// generated grammar — justified in DESIGN.md.
type cssParser struct{}

// NewCSS returns the CSS parser (.css).
func NewCSS() *cssParser { return &cssParser{} }

func (p *cssParser) SupportsStreaming() bool   { return false }
func (p *cssParser) EmitsImplementation() bool { return true }

func (p *cssParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	text := string(source)
	lines := strings.Split(text, "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	fileSpan := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, fileSpan, "file "+filePath)

	depth := 0
	selectorStart := -1
	lineNo := 1
	var selectorBuf strings.Builder
	ruleStartLine := 1
	scope := newScopeNamer()

	for _, r := range text {
		switch r {
		case '\n':
			lineNo++
		case '{':
			if depth == 0 {
				selectorStart = lineNo
				ruleStartLine = lineNo
			}
			depth++
		case '}':
			depth--
			if depth == 0 && selectorStart != -1 {
				selector := strings.TrimSpace(selectorBuf.String())
				selectorBuf.Reset()
				if selector != "" {
					name := qualified(filePath, scope.qualify(selector, ruleStartLine))
					span := model.LineSpan{Start: ruleStartLine, End: lineNo}
					b.addEntity(name, model.EntityOther, span, selector+" { ... }")
					body := extractLines(lines, span.Start, span.End)
					b.addImplementation(name, model.EntityOther, span, body, nil)
					b.addRelation(fileEntity, name, model.RelationContains)
				}
				selectorStart = -1
			}
		default:
			if depth == 0 {
				selectorBuf.WriteRune(r)
			}
		}
	}

	return b.build(), nil
}

// htmlParser is the "document-structure language" family. No tree-sitter-
// html grammar is available; the opening tags of script, style, head, body,
// section, header, footer, nav and main elements are recovered, wherever
// they appear, with a lightweight tag scanner — justified in DESIGN.md.
type htmlParser struct{}

// NewHTML returns the HTML parser (.html, .htm).
func NewHTML() *htmlParser { return &htmlParser{} }

func (p *htmlParser) SupportsStreaming() bool   { return false }
func (p *htmlParser) EmitsImplementation() bool { return true }

var htmlTagRe = regexp.MustCompile(`<(\w+)([^>]*)>`)

func (p *htmlParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	text := string(source)
	lines := strings.Split(text, "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	fileSpan := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, fileSpan, "file "+filePath)

	scope := newScopeNamer()
	for _, m := range htmlTagRe.FindAllStringSubmatchIndex(text, -1) {
		tag := text[m[2]:m[3]]
		switch strings.ToLower(tag) {
		case "script", "style", "head", "body", "section", "header", "footer", "nav", "main":
			line := 1 + strings.Count(text[:m[0]], "\n")
			name := qualified(filePath, scope.qualify(tag, line))
			span := model.LineSpan{Start: line, End: line}
			b.addEntity(name, model.EntityOther, span, "<"+tag+">")
			b.addRelation(fileEntity, name, model.RelationContains)
		}
	}

	return b.build(), nil
}
