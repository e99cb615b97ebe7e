package indexer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/embed"
	"github.com/indexgraph/codegraph/internal/parse"
	"github.com/indexgraph/codegraph/internal/parse/lang"
	"github.com/indexgraph/codegraph/internal/store"
)

func newTestOrchestrator() (*Orchestrator, *store.Adapter) {
	registry := parse.NewRegistry()
	registry.Register(lang.NewGo(), ".go")
	adapter := store.New()
	coord := embed.NewCoordinator(embed.NewMockProvider(), &embed.CostAccumulator{})
	return New(registry, adapter, coord, 384, ""), adapter
}

func writeGoFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const sampleGoSource = `package sample

func Greet(name string) string {
	return "hello " + name
}
`

func TestRunIndexesNewFiles(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "sample.go", sampleGoSource)

	orch, adapter := newTestOrchestrator()
	ctx := context.Background()

	summary, err := orch.Run(ctx, Options{
		ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*.go"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesIndexed)
	assert.Greater(t, summary.ChunksUpserted, 0)

	count, err := adapter.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Greater(t, count, 0)
}

func TestRunIsIdempotentOnSecondPass(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "sample.go", sampleGoSource)

	orch, _ := newTestOrchestrator()
	ctx := context.Background()
	opts := Options{ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*.go"}}

	_, err := orch.Run(ctx, opts)
	require.NoError(t, err)

	summary, err := orch.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.FilesIndexed)
	assert.Equal(t, 1, summary.FilesSkipped)
	assert.Equal(t, 0, summary.ChunksUpserted)
}

func TestRunDeletesPointsForRemovedFile(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "sample.go", sampleGoSource)

	orch, adapter := newTestOrchestrator()
	ctx := context.Background()
	opts := Options{ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*.go"}}

	_, err := orch.Run(ctx, opts)
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "sample.go")))

	summary, err := orch.Run(ctx, opts)
	require.NoError(t, err)
	assert.Greater(t, summary.ChunksDeleted, 0)

	count, err := adapter.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRunForceReembedsUnchangedFile(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "sample.go", sampleGoSource)

	orch, _ := newTestOrchestrator()
	ctx := context.Background()
	opts := Options{ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*.go"}, Force: true}

	_, err := orch.Run(ctx, opts)
	require.NoError(t, err)

	summary, err := orch.Run(ctx, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.FilesIndexed)
	assert.Greater(t, summary.ChunksUpserted, 0)
}

func TestRunClearModeErasesCollection(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "sample.go", sampleGoSource)

	orch, adapter := newTestOrchestrator()
	ctx := context.Background()
	opts := Options{ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*.go"}}

	_, err := orch.Run(ctx, opts)
	require.NoError(t, err)

	_, err = orch.Run(ctx, Options{ProjectRoot: root, Collection: "chunks", Mode: ModeClear, Includes: []string{"**/*.go"}})
	require.NoError(t, err)

	count, err := adapter.Count(ctx, "chunks", nil)
	require.NoError(t, err)
	assert.Greater(t, count, 0) // clear re-indexes in the same pass after erasing
}

func TestRunSkipsUnsupportedExtension(t *testing.T) {
	root := t.TempDir()
	writeGoFile(t, root, "notes.xyz", "whatever")

	orch, _ := newTestOrchestrator()
	ctx := context.Background()

	summary, err := orch.Run(ctx, Options{
		ProjectRoot: root, Collection: "chunks", Mode: ModeIncremental, Includes: []string{"**/*"},
	})
	require.Error(t, err)
	assert.Equal(t, 1, summary.FilesFailed)
}
