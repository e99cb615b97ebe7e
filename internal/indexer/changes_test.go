package indexer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
	"github.com/indexgraph/codegraph/internal/snapshot"
)

func TestClassifyFilesDetectsCreated(t *testing.T) {
	snap := snapshot.New("chunks")
	discovered := []discoveredFile{{RelPath: "a.go", AbsPath: "/root/a.go", Size: 10, Mtime: 100}}

	changes := classifyFiles(discovered, snap, false)
	require.Len(t, changes, 1)
	assert.Equal(t, statusCreated, changes[0].Status)
}

func TestClassifyFilesDetectsUnchanged(t *testing.T) {
	mtime := time.Unix(0, 100).UTC()
	snap := snapshot.New("chunks")
	snap.Put(snapshot.FileRecord{Path: "a.go", Mtime: mtime, Size: 10})
	discovered := []discoveredFile{{RelPath: "a.go", AbsPath: "/root/a.go", Size: 10, Mtime: 100}}

	changes := classifyFiles(discovered, snap, false)
	require.Len(t, changes, 1)
	assert.Equal(t, statusUnchanged, changes[0].Status)
}

func TestClassifyFilesSameMtimeDifferentSizeIsModified(t *testing.T) {
	mtime := time.Unix(0, 100).UTC()
	snap := snapshot.New("chunks")
	snap.Put(snapshot.FileRecord{Path: "a.go", Mtime: mtime, Size: 10})
	discovered := []discoveredFile{{RelPath: "a.go", AbsPath: "/root/a.go", Size: 20, Mtime: 100}}

	changes := classifyFiles(discovered, snap, false)
	require.Len(t, changes, 1)
	assert.Equal(t, statusModified, changes[0].Status)
}

func TestClassifyFilesForceOverridesUnchanged(t *testing.T) {
	mtime := time.Unix(0, 100).UTC()
	snap := snapshot.New("chunks")
	snap.Put(snapshot.FileRecord{Path: "a.go", Mtime: mtime, Size: 10})
	discovered := []discoveredFile{{RelPath: "a.go", AbsPath: "/root/a.go", Size: 10, Mtime: 100}}

	changes := classifyFiles(discovered, snap, true)
	require.Len(t, changes, 1)
	assert.Equal(t, statusModified, changes[0].Status)
}

func TestClassifyFilesDetectsDeleted(t *testing.T) {
	snap := snapshot.New("chunks")
	snap.Put(snapshot.FileRecord{Path: "gone.go", Mtime: time.Unix(0, 1).UTC(), Size: 1})

	changes := classifyFiles(nil, snap, false)
	require.Len(t, changes, 1)
	assert.Equal(t, statusDeleted, changes[0].Status)
	assert.Equal(t, "gone.go", changes[0].Path)
}

func TestDiffChunksClassifiesAddedModifiedUnchangedRemoved(t *testing.T) {
	rec := snapshot.FileRecord{Chunks: []snapshot.ChunkRecord{
		{ChunkID: "a::metadata", ContentHash: "hash1", ChunkType: "metadata"},
		{ChunkID: "b::metadata", ContentHash: "hash2", ChunkType: "metadata"},
		{ChunkID: "d::metadata", ContentHash: "hash4", ChunkType: "metadata"}, // removed
	}}

	chunks := []model.Chunk{
		{ID: "a::metadata", ContentHash: "hash1"},     // unchanged
		{ID: "b::metadata", ContentHash: "hash2-new"}, // modified
		{ID: "c::metadata", ContentHash: "hash3"},     // added
	}

	diff := diffChunks(chunks, rec, false)
	assert.Len(t, diff.Unchanged, 1)
	assert.Len(t, diff.Added, 2)
	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "d::metadata", diff.Removed[0].ChunkID)
}

func TestDiffChunksForceAddsEveryChunkRegardlessOfHash(t *testing.T) {
	rec := snapshot.FileRecord{Chunks: []snapshot.ChunkRecord{
		{ChunkID: "a::metadata", ContentHash: "hash1", ChunkType: "metadata"},
	}}
	chunks := []model.Chunk{{ID: "a::metadata", ContentHash: "hash1"}}

	diff := diffChunks(chunks, rec, true)
	assert.Empty(t, diff.Unchanged)
	require.Len(t, diff.Added, 1)
	assert.Equal(t, "a::metadata", diff.Added[0].ID)
}

func TestNewFileChunkDiffMarksEverythingAdded(t *testing.T) {
	chunks := []model.Chunk{{ID: "a::metadata"}, {ID: "a::implementation"}}
	diff := newFileChunkDiff(chunks)
	assert.Len(t, diff.Added, 2)
	assert.Empty(t, diff.Unchanged)
	assert.Empty(t, diff.Removed)
}
