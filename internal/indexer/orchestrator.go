// Package indexer implements C6 (change detection) and C9 (the
// orchestrator): the end-to-end pipeline that turns a project's files into
// store points, incrementally, in a single mode-driven, uniformly-dispatched
// discover-classify-parse-embed-upsert loop.
package indexer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/indexgraph/codegraph/internal/embed"
	"github.com/indexgraph/codegraph/internal/model"
	"github.com/indexgraph/codegraph/internal/observe"
	"github.com/indexgraph/codegraph/internal/parse"
	"github.com/indexgraph/codegraph/internal/snapshot"
	"github.com/indexgraph/codegraph/internal/store"
)

// Mode selects the orchestrator run mode.
type Mode string

const (
	ModeFull        Mode = "full"
	ModeIncremental Mode = "incremental"
	ModeClear       Mode = "clear"
)

// fileDeadline bounds a single file's parse+embed+upsert work: each file
// gets an overall deadline, default 60s.
const fileDeadline = 60 * time.Second

// defaultConcurrency bounds how many created/modified files are processed
// at once when Options.Concurrency is unset.
const defaultConcurrency = 8

// Options configures one orchestrator run.
type Options struct {
	ProjectRoot string
	Collection  string
	Mode        Mode
	Force       bool
	ClearAll    bool
	Includes    []string
	Excludes    []string
	Concurrency int
}

// Summary is the user-visible run result: counts of files/chunks by
// outcome, token spend, and the failures list.
type Summary struct {
	RunID           string
	FilesIndexed    int
	FilesSkipped    int
	FilesFailed     int
	ChunksUpserted  int
	ChunksDeleted   int
	ChunksUnchanged int
	Costs           *embed.CostAccumulator
	Failures        []FileFailure
}

// String renders the run summary: counts of files/chunks by outcome, tokens
// used, estimated cost, and failures listed with file path and error kind.
func (s *Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", s.RunID)
	fmt.Fprintf(&b, "files: %d indexed, %d skipped, %d failed\n", s.FilesIndexed, s.FilesSkipped, s.FilesFailed)
	fmt.Fprintf(&b, "chunks: %d upserted, %d deleted, %d unchanged\n", s.ChunksUpserted, s.ChunksDeleted, s.ChunksUnchanged)
	if s.Costs != nil {
		fmt.Fprintf(&b, "embedding: %s\n", s.Costs.String())
	}
	for _, f := range s.Failures {
		fmt.Fprintf(&b, "  FAILED %s: %v\n", f.FilePath, f.Err)
	}
	return b.String()
}

// Orchestrator is C9: it wires C2/C3 (parse.Registry), C4 (observe.Enrich),
// C6 (this package's change classification), C7 (embed.Coordinator), and C8
// (store.Adapter) into the per-run algorithm.
type Orchestrator struct {
	registry    *parse.Registry
	adapter     *store.Adapter
	coordinator *embed.Coordinator
	vectorDim   int
	distance    string
}

// New builds an Orchestrator. vectorDim/distance are passed straight
// through to EnsureCollection at the start of each run.
func New(registry *parse.Registry, adapter *store.Adapter, coordinator *embed.Coordinator, vectorDim int, distance string) *Orchestrator {
	return &Orchestrator{
		registry:    registry,
		adapter:     adapter,
		coordinator: coordinator,
		vectorDim:   vectorDim,
		distance:    distance,
	}
}

// Run executes one pass of the per-run algorithm.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = defaultConcurrency
	}
	summary := &Summary{RunID: uuid.NewString(), Costs: o.coordinator.Costs()}

	if err := o.adapter.EnsureCollection(opts.Collection, o.vectorDim, o.distance); err != nil {
		return nil, &ConfigError{Reason: fmt.Sprintf("ensure collection: %v", err)}
	}

	// Step 1: load snapshot.
	snap, err := snapshot.Load(opts.ProjectRoot, opts.Collection)
	if err != nil {
		corruptPath := snapshot.Path(opts.ProjectRoot, opts.Collection)
		_ = snapshot.Quarantine(corruptPath)
		snap = snapshot.New(opts.Collection)
	}

	// ModeFull re-embeds every currently-present file regardless of
	// mtime/hash, without erasing the collection first (unlike ModeClear);
	// it is equivalent to an implicit --force over the whole project.
	if opts.Mode == ModeFull {
		opts.Force = true
	}

	if opts.Mode == ModeClear {
		if err := o.clearCollection(ctx, opts.Collection, opts.ClearAll); err != nil {
			return nil, &StoreError{Op: "clear", Err: err}
		}
		snap = snapshot.New(opts.Collection)
	}

	// Step 2: enumerate + classify.
	disc, err := newDiscovery(opts.ProjectRoot, opts.Includes, opts.Excludes)
	if err != nil {
		return nil, err
	}
	discovered, err := disc.walk()
	if err != nil {
		return nil, fmt.Errorf("indexer: discover files: %w", err)
	}
	changes := classifyFiles(discovered, snap, opts.Force)

	removedNames := make(map[string]bool)

	// Step 3: deleted files.
	for _, ch := range changes {
		if ch.Status != statusDeleted {
			continue
		}
		if rec, ok := snap.Get(ch.Path); ok {
			for _, cr := range rec.Chunks {
				removedNames[entityNameFromChunkID(cr.ChunkID, cr.ChunkType)] = true
			}
			summary.ChunksDeleted += len(rec.Chunks)
		}
		if err := o.adapter.DeleteByFilter(ctx, opts.Collection, store.Filter{"file_path": ch.Path, "type": "chunk"}); err != nil {
			summary.Failures = append(summary.Failures, FileFailure{FilePath: ch.Path, Err: &StoreError{Op: "delete_by_filter", Err: err}})
			continue
		}
		if err := o.adapter.DeleteByFilter(ctx, opts.Collection, store.Filter{"file_path": ch.Path, "type": "relation"}); err != nil {
			summary.Failures = append(summary.Failures, FileFailure{FilePath: ch.Path, Err: &StoreError{Op: "delete_by_filter", Err: err}})
			continue
		}
		snap.Remove(ch.Path)
	}

	// Steps 4-5: unchanged skipped, created/modified processed with bounded
	// concurrency.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	results := make(chan fileResult, len(changes))

	for _, ch := range changes {
		switch ch.Status {
		case statusUnchanged:
			summary.FilesSkipped++
			continue
		case statusDeleted:
			continue
		}
		ch := ch
		g.Go(func() error {
			results <- o.processFile(gctx, opts.Collection, ch, snap, opts.Force)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	for res := range results {
		if res.err != nil {
			summary.FilesFailed++
			summary.Failures = append(summary.Failures, FileFailure{FilePath: res.change.Path, Err: res.err})
			continue
		}
		summary.FilesIndexed++
		summary.ChunksUpserted += len(res.diff.Added)
		summary.ChunksUnchanged += len(res.diff.Unchanged)
		summary.ChunksDeleted += len(res.diff.Removed)
		for _, cr := range res.diff.Removed {
			removedNames[entityNameFromChunkID(cr.ChunkID, cr.ChunkType)] = true
		}
		snap.Put(res.record)
	}

	// Step 6: orphan sweep.
	if err := o.orphanSweep(ctx, opts.Collection, removedNames); err != nil {
		return summary, fmt.Errorf("indexer: orphan sweep: %w", err)
	}

	// Step 7: persist snapshot atomically.
	if err := snap.Save(opts.ProjectRoot); err != nil {
		fmt.Fprintf(os.Stderr, "indexer: snapshot write failed, next run will re-detect changes: %v\n", err)
	}

	if len(summary.Failures) > 0 {
		return summary, errRunPartial
	}
	return summary, nil
}

// errRunPartial signals a partial-failure exit code without being a fatal
// error; the summary is still valid and complete.
var errRunPartial = fmt.Errorf("indexer: run completed with failures")

// fileResult is one processed file's outcome, handed back over a channel
// from the bounded worker pool.
type fileResult struct {
	change fileChange
	diff   chunkDiff
	record snapshot.FileRecord
	err    error
}

// processFile runs the per-file pipeline for a single created/modified
// file: parse, enrich, diff, embed, upsert/delete, all within fileDeadline.
// force re-diffs a modified file's chunks as though every one changed, so
// --force/ModeFull re-embeds files classifyFiles marked modified only
// because of the force flag, not because their content actually changed.
// Any failure leaves the prior snapshot entry (if any) untouched.
func (o *Orchestrator) processFile(ctx context.Context, collection string, ch fileChange, snap *snapshot.Snapshot, force bool) fileResult {
	ctx, cancel := context.WithTimeout(ctx, fileDeadline)
	defer cancel()

	content, err := os.ReadFile(ch.AbsPath)
	if err != nil {
		return fileResult{change: ch, err: fmt.Errorf("read %s: %w", ch.Path, err)}
	}

	parser, err := o.registry.Lookup(ch.Path)
	if err != nil {
		return fileResult{change: ch, err: &UnsupportedLanguageError{FilePath: ch.Path, Extension: extOf(ch.Path)}}
	}

	ext, err := parser.Parse(ctx, ch.Path, content)
	if err != nil {
		return fileResult{change: ch, err: &ParseError{FilePath: ch.Path, Err: err}}
	}

	observe.Enrich(ext)

	allChunks := append(append([]model.Chunk{}, ext.MetadataChunks...), ext.ImplementationChunks...)

	var diff chunkDiff
	if ch.Status == statusCreated {
		diff = newFileChunkDiff(allChunks)
	} else {
		rec, _ := snap.Get(ch.Path)
		diff = diffChunks(allChunks, rec, force)
	}

	inputs := make([]embed.ChunkInput, len(diff.Added))
	for i, c := range diff.Added {
		inputs[i] = embed.ChunkInput{ChunkID: c.ID, Content: c.Content, ContentHash: c.ContentHash}
	}
	vectors, err := o.coordinator.Embed(ctx, inputs, embed.EmbedModePassage)
	if err != nil {
		return fileResult{change: ch, err: err}
	}

	var points []store.Point
	for _, c := range diff.Added {
		points = append(points, chunkPoint(c, vectors[c.ContentHash]))
	}
	if len(points) > 0 {
		if err := o.adapter.Upsert(ctx, collection, points); err != nil {
			return fileResult{change: ch, err: &StoreError{Op: "upsert", Err: err}}
		}
	}

	if len(diff.Removed) > 0 {
		ids := make([]string, len(diff.Removed))
		for i, cr := range diff.Removed {
			ids[i] = cr.ChunkID
		}
		if err := o.adapter.Delete(ctx, collection, ids); err != nil {
			return fileResult{change: ch, err: &StoreError{Op: "delete", Err: err}}
		}
	}

	if err := o.adapter.DeleteByFilter(ctx, collection, store.Filter{"file_path": ch.Path, "type": "relation"}); err != nil {
		return fileResult{change: ch, err: &StoreError{Op: "delete_by_filter", Err: err}}
	}
	if len(ext.Relations) > 0 {
		relPoints := make([]store.Point, len(ext.Relations))
		for i, r := range ext.Relations {
			relPoints[i] = relationPoint(r)
		}
		if err := o.adapter.Upsert(ctx, collection, relPoints); err != nil {
			return fileResult{change: ch, err: &StoreError{Op: "upsert", Err: err}}
		}
	}

	return fileResult{change: ch, diff: diff, record: recordFor(ch, allChunks)}
}

// clearCollection erases points for the `--clear`/`--clear-all` modes:
// `--clear` retains manual records (no file_path); `--clear-all` erases
// those too.
func (o *Orchestrator) clearCollection(ctx context.Context, collection string, clearAll bool) error {
	var cursor *store.Cursor
	var ids []string
	for {
		page, err := o.adapter.Scroll(ctx, collection, nil, false, cursor)
		if err != nil {
			return err
		}
		for _, pt := range page.Points {
			// A manual record has type=="chunk" and no file_path (the
			// reserved marker from model.ManualMarker); --clear leaves those
			// in place, --clear-all does not.
			filePath, _ := pt.Payload["file_path"].(string)
			if !clearAll && pt.Payload["type"] == "chunk" && filePath == model.ManualMarker {
				continue
			}
			ids = append(ids, pt.ID)
		}
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}
	return o.adapter.Delete(ctx, collection, ids)
}

// orphanSweep drops relations whose endpoint entity was removed this run:
// only entity names this run explicitly removed are checked; unresolved
// external names are always treated as valid.
func (o *Orchestrator) orphanSweep(ctx context.Context, collection string, removedNames map[string]bool) error {
	if len(removedNames) == 0 {
		return nil
	}

	validNames := make(map[string]bool)
	var cursor *store.Cursor
	for {
		page, err := o.adapter.Scroll(ctx, collection, store.Filter{"type": "chunk", "chunk_type": "metadata"}, false, cursor)
		if err != nil {
			return err
		}
		for _, pt := range page.Points {
			validNames[fmt.Sprint(pt.Payload["entity_name"])] = true
		}
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}

	var orphanIDs []string
	cursor = nil
	for {
		page, err := o.adapter.Scroll(ctx, collection, store.Filter{"type": "relation"}, false, cursor)
		if err != nil {
			return err
		}
		for _, pt := range page.Points {
			from := fmt.Sprint(pt.Payload["from_entity"])
			to := fmt.Sprint(pt.Payload["to_entity"])
			if (removedNames[from] && !validNames[from]) || (removedNames[to] && !validNames[to]) {
				orphanIDs = append(orphanIDs, pt.ID)
			}
		}
		if page.Next == nil {
			break
		}
		cursor = page.Next
	}

	if len(orphanIDs) == 0 {
		return nil
	}
	return o.adapter.Delete(ctx, collection, orphanIDs)
}

// entityNameFromChunkID recovers the owning entity name from a chunk id of
// the form "<entity_name>::<chunk_type>" (model.ChunkID's format).
func entityNameFromChunkID(chunkID, chunkType string) string {
	return strings.TrimSuffix(chunkID, "::"+chunkType)
}

func extOf(path string) string {
	i := strings.LastIndex(path, ".")
	if i < 0 {
		return ""
	}
	return path[i:]
}
