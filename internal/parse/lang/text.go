package lang

import (
	"context"
	"fmt"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// streamingThresholdBytes is the size above which textParser switches from a
// single whole-file chunk to a bounded-memory streaming pathway: extremely
// large structured files get streamed in fixed-size pieces, and the parser
// reports streamed = true.
const streamingThresholdBytes = 256 * 1024

// textChunkLines is the number of source lines per text_chunk entity once a
// file crosses the streaming threshold.
const textChunkLines = 200

// textParser is the catch-all "plain text chunked by size" textual family.
// Below the streaming threshold the file entity gets a single whole-file
// implementation chunk; above it, the file is split into fixed-size text_chunk children
// and Streamed is set.
type textParser struct{}

// NewText returns the plain-text parser (.txt). Extensions with no
// registered parser do not fall through to it: the registry rejects them.
func NewText() *textParser { return &textParser{} }

func (p *textParser) SupportsStreaming() bool   { return true }
func (p *textParser) EmitsImplementation() bool { return true }

func (p *textParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	lines := strings.Split(string(source), "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	fileSpan := model.LineSpan{Start: 1, End: len(lines)}
	b.addEntity(fileEntity, model.EntityFile, fileSpan, "file "+filePath)

	if len(source) <= streamingThresholdBytes {
		b.addImplementation(fileEntity, model.EntityFile, fileSpan, string(source), nil)
		return b.build(), nil
	}

	b.markStreamed()
	for start := 1; start <= len(lines); start += textChunkLines {
		end := start + textChunkLines - 1
		if end > len(lines) {
			end = len(lines)
		}
		span := model.LineSpan{Start: start, End: end}
		name := fmt.Sprintf("%s::chunk@%d", filePath, start)
		body := extractLines(lines, start, end)
		b.addEntity(name, model.EntityTextChunk, span, fmt.Sprintf("text chunk lines %d-%d", start, end))
		b.addImplementation(name, model.EntityTextChunk, span, body, nil)
		b.addRelation(fileEntity, name, model.RelationContains)
	}

	return b.build(), nil
}
