package indexer

import (
	"time"

	"github.com/indexgraph/codegraph/internal/model"
	"github.com/indexgraph/codegraph/internal/snapshot"
)

// fileStatus classifies one file relative to the prior snapshot into one of
// four buckets: unchanged, modified, created, or deleted.
type fileStatus string

const (
	statusUnchanged fileStatus = "unchanged"
	statusModified  fileStatus = "modified"
	statusCreated   fileStatus = "created"
	statusDeleted   fileStatus = "deleted"
)

// chunkStatus classifies one chunk within a modified file.
type chunkStatus string

const (
	chunkAdded     chunkStatus = "chunk-added"
	chunkRemoved   chunkStatus = "chunk-removed"
	chunkModified  chunkStatus = "chunk-modified"
	chunkUnchanged chunkStatus = "chunk-unchanged"
)

// fileChange is one file's classification plus, for modified files, the
// per-chunk diff the orchestrator needs to decide what to embed/upsert/delete.
type fileChange struct {
	Path   string
	Status fileStatus

	// AbsPath/Size/Mtime are only populated for unchanged/modified/created
	// files (anything still present on disk).
	AbsPath string
	Size    int64
	Mtime   time.Time
}

// chunkDiff is the result of comparing a freshly extracted file's chunks
// against its snapshot record: chunks added (new or changed), unchanged, and
// removed.
type chunkDiff struct {
	Added     []model.Chunk
	Unchanged []model.Chunk
	Removed   []snapshot.ChunkRecord
}

// classifyFiles compares the current discovered file set to the prior
// snapshot and returns one fileChange per file that needs attention. Equal
// mtime+size is unchanged unless force is set; equal mtime but differing
// size is modified.
func classifyFiles(discovered []discoveredFile, snap *snapshot.Snapshot, force bool) []fileChange {
	seen := make(map[string]bool, len(discovered))
	var changes []fileChange

	for _, f := range discovered {
		seen[f.RelPath] = true
		mtime := time.Unix(0, f.Mtime).UTC()

		rec, existed := snap.Get(f.RelPath)
		if !existed {
			changes = append(changes, fileChange{
				Path: f.RelPath, Status: statusCreated,
				AbsPath: f.AbsPath, Size: f.Size, Mtime: mtime,
			})
			continue
		}

		sameMtime := rec.Mtime.Equal(mtime)
		sameSize := rec.Size == f.Size
		status := statusUnchanged
		if force || !sameMtime || !sameSize {
			status = statusModified
		}

		changes = append(changes, fileChange{
			Path: f.RelPath, Status: status,
			AbsPath: f.AbsPath, Size: f.Size, Mtime: mtime,
		})
	}

	for _, path := range snap.Paths() {
		if !seen[path] {
			changes = append(changes, fileChange{Path: path, Status: statusDeleted})
		}
	}

	return changes
}

// diffChunks compares a modified file's freshly extracted chunks to its
// snapshot record and classifies each by content hash. force puts every
// chunk in Added regardless of hash match, so an explicit --force always
// re-embeds and re-upserts the whole file, per the tie-break rule that an
// explicit --force overrides a hash match. Created files should skip this
// and treat every chunk as Added (callers use newFileChunkDiff for that
// case instead).
func diffChunks(chunks []model.Chunk, rec snapshot.FileRecord, force bool) chunkDiff {
	prior := make(map[string]snapshot.ChunkRecord, len(rec.Chunks))
	for _, cr := range rec.Chunks {
		prior[cr.ChunkID] = cr
	}

	var diff chunkDiff
	current := make(map[string]bool, len(chunks))
	for _, c := range chunks {
		current[c.ID] = true
		priorRec, existed := prior[c.ID]
		if force || !existed || priorRec.ContentHash != c.ContentHash {
			diff.Added = append(diff.Added, c)
		} else {
			diff.Unchanged = append(diff.Unchanged, c)
		}
	}
	for id, cr := range prior {
		if !current[id] {
			diff.Removed = append(diff.Removed, cr)
		}
	}
	return diff
}

// newFileChunkDiff treats every chunk of a newly created file as added.
func newFileChunkDiff(chunks []model.Chunk) chunkDiff {
	return chunkDiff{Added: chunks}
}

// recordFor builds the snapshot.FileRecord for a successfully processed
// file from its final (post-diff) chunk set.
func recordFor(change fileChange, chunks []model.Chunk) snapshot.FileRecord {
	rec := snapshot.FileRecord{
		Path:  change.Path,
		Mtime: change.Mtime,
		Size:  change.Size,
	}
	for _, c := range chunks {
		rec.Chunks = append(rec.Chunks, snapshot.ChunkRecord{
			ChunkID:     c.ID,
			ContentHash: c.ContentHash,
			ChunkType:   string(c.Kind),
		})
	}
	return rec
}
