// Package store implements C8, the vector store adapter: ensure_collection,
// upsert, delete, delete_by_filter, scroll, and count over
// philippgille/chromem-go, an embedded in-process vector database.
// chromem-go's Collection/Document/metadata-filter model is a close
// structural match for a typed key-value store over points with payload
// filters, generalized here from a read-only search index into a full
// read/write adapter.
//
// chromem-go's public surface has no enumeration method (no "list all
// documents" call, only id lookup and embedding/text similarity query), so
// this adapter keeps its own id-ordered payload index alongside each
// chromem.Collection to serve delete_by_filter/scroll/count. chromem-go
// itself remains the source of truth for the one thing it's good at:
// nearest-neighbor Query.
package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/philippgille/chromem-go"
)

// Point is one (id, vector, payload) triple, the unit upsert/delete/scroll
// operate on.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Filter is a payload predicate: every key/value pair must match the point's
// payload exactly (AND semantics) for the filter to select it. This mirrors
// chromem-go's own native where-filter shape (string equality, ANDed), but
// operates over the full typed payload rather than only the string-keyed
// subset chromem's WHERE clause supports.
type Filter map[string]any

// Matches reports whether payload satisfies every key/value pair in f.
func (f Filter) Matches(payload map[string]any) bool {
	for k, want := range f {
		got, ok := payload[k]
		if !ok {
			return false
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false
		}
	}
	return true
}

// collectionState pairs a chromem-go collection (used only for ANN query)
// with this adapter's own authoritative id->point index.
type collectionState struct {
	col    *chromem.Collection
	dim    int
	points map[string]Point
}

// Adapter is the C8 vector store, backed by one chromem-go *DB plus one
// collectionState per logical collection name.
type Adapter struct {
	mu          sync.RWMutex
	db          *chromem.DB
	collections map[string]*collectionState
}

// New returns an empty adapter wrapping a fresh in-memory chromem-go
// database. chromem-go has no server process or connection to manage, so
// there is no corresponding Close.
func New() *Adapter {
	return &Adapter{
		db:          chromem.NewDB(),
		collections: make(map[string]*collectionState),
	}
}

// NewAt returns an adapter backed by a chromem-go database persisted under
// dir (created if missing), so collections survive across indexer runs. The
// spec's VECTOR_STORE_URL is repurposed here as that directory path: there
// is no network endpoint to dial since chromem-go is embedded, not a server.
func NewAt(dir string) (*Adapter, error) {
	if dir == "" {
		return New(), nil
	}
	db, err := chromem.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("store: open persistent db at %s: %w", dir, err)
	}
	return &Adapter{
		db:          db,
		collections: make(map[string]*collectionState),
	}, nil
}

// EnsureCollection idempotently creates a collection with the given vector
// dimension. distance is accepted for interface parity with other vector
// store backends, but chromem-go always uses cosine similarity internally,
// so any other value is rejected rather than silently ignored.
func (a *Adapter) EnsureCollection(name string, vectorDim int, distance string) error {
	if distance != "" && distance != "cosine" {
		return fmt.Errorf("store: unsupported distance %q (chromem-go only supports cosine)", distance)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if existing, ok := a.collections[name]; ok {
		if existing.dim != vectorDim {
			return fmt.Errorf("store: collection %q already exists with vector_dim %d, cannot reopen as %d", name, existing.dim, vectorDim)
		}
		return nil
	}

	col, err := a.db.CreateCollection(name, nil, nil)
	if err != nil {
		return fmt.Errorf("store: create collection %q: %w", name, err)
	}
	a.collections[name] = &collectionState{col: col, dim: vectorDim, points: make(map[string]Point)}
	return nil
}

func (a *Adapter) state(name string) (*collectionState, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	st, ok := a.collections[name]
	if !ok {
		return nil, fmt.Errorf("store: collection %q not found, call EnsureCollection first", name)
	}
	return st, nil
}

// Upsert writes points into name, batched by the caller. chromem-go has no
// native upsert, so each point is deleted (ignoring "not found") and
// re-added.
func (a *Adapter) Upsert(ctx context.Context, name string, points []Point) error {
	st, err := a.state(name)
	if err != nil {
		return err
	}

	for _, pt := range points {
		if len(pt.Vector) != 0 && st.dim != 0 && st.dim != len(pt.Vector) {
			return fmt.Errorf("store: point %q has vector_dim %d, collection %q expects %d", pt.ID, len(pt.Vector), name, st.dim)
		}

		_ = st.col.Delete(ctx, nil, nil, pt.ID)

		content, _ := pt.Payload["content"].(string)
		doc := chromem.Document{
			ID:        pt.ID,
			Content:   content,
			Embedding: pt.Vector,
			Metadata:  flattenPayload(pt.Payload),
		}
		if err := st.col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("store: upsert %q: %w", pt.ID, err)
		}

		a.mu.Lock()
		st.points[pt.ID] = pt
		a.mu.Unlock()
	}
	return nil
}

// Delete removes points by id.
func (a *Adapter) Delete(ctx context.Context, name string, ids []string) error {
	st, err := a.state(name)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if err := st.col.Delete(ctx, nil, nil, ids...); err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}

	a.mu.Lock()
	for _, id := range ids {
		delete(st.points, id)
	}
	a.mu.Unlock()
	return nil
}

// DeleteByFilter removes every point whose payload matches filter.
func (a *Adapter) DeleteByFilter(ctx context.Context, name string, filter Filter) error {
	st, err := a.state(name)
	if err != nil {
		return err
	}

	ids := a.matchingIDs(st, filter)
	return a.Delete(ctx, name, ids)
}

// Count returns the number of points matching filter (nil filter counts
// everything in the collection).
func (a *Adapter) Count(_ context.Context, name string, filter Filter) (int, error) {
	st, err := a.state(name)
	if err != nil {
		return 0, err
	}
	if filter == nil {
		a.mu.RLock()
		defer a.mu.RUnlock()
		return len(st.points), nil
	}
	return len(a.matchingIDs(st, filter)), nil
}

// Cursor paginates Scroll; it carries only an offset into the
// deterministically-ordered (by id) result set, no external state.
type Cursor struct {
	offset int
}

// ScrollPage is one page of results plus the cursor to fetch the next one;
// Next is nil once enumeration is exhausted.
type ScrollPage struct {
	Points []Point
	Next   *Cursor
}

const scrollPageSize = 256

// Scroll pages through every point in name matching filter, in deterministic
// id order.
func (a *Adapter) Scroll(_ context.Context, name string, filter Filter, withVector bool, cursor *Cursor) (*ScrollPage, error) {
	st, err := a.state(name)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	matches := make([]Point, 0, len(st.points))
	for _, pt := range st.points {
		if filter != nil && !filter.Matches(pt.Payload) {
			continue
		}
		matches = append(matches, pt)
	}
	a.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	offset := 0
	if cursor != nil {
		offset = cursor.offset
	}
	if offset > len(matches) {
		offset = len(matches)
	}
	end := offset + scrollPageSize
	if end > len(matches) {
		end = len(matches)
	}

	page := make([]Point, end-offset)
	for i, m := range matches[offset:end] {
		if !withVector {
			m.Vector = nil
		}
		page[i] = m
	}

	var next *Cursor
	if end < len(matches) {
		next = &Cursor{offset: end}
	}
	return &ScrollPage{Points: page, Next: next}, nil
}

// matchingIDs returns the ids of every tracked point whose payload satisfies
// filter (nil filter matches everything).
func (a *Adapter) matchingIDs(st *collectionState, filter Filter) []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	ids := make([]string, 0, len(st.points))
	for id, pt := range st.points {
		if filter != nil && !filter.Matches(pt.Payload) {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

// Query runs an approximate-nearest-neighbor search, the read path downstream
// search consumers use against chunk embeddings.
func (a *Adapter) Query(ctx context.Context, name string, queryVector []float32, limit int, filter Filter) ([]Point, error) {
	st, err := a.state(name)
	if err != nil {
		return nil, err
	}
	where, _ := stringOnlyWhere(filter)

	n := limit
	if count := st.col.Count(); n > count {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := st.col.QueryEmbedding(ctx, queryVector, n, where, nil)
	if err != nil {
		return nil, fmt.Errorf("store: query: %w", err)
	}

	out := make([]Point, 0, len(results))
	for _, r := range results {
		payload := unflattenPayload(r.Metadata)
		if filter != nil && !filter.Matches(payload) {
			continue
		}
		out = append(out, Point{ID: r.ID, Vector: r.Embedding, Payload: payload})
	}
	return out, nil
}

// flattenPayload converts a typed payload into the string-only metadata map
// chromem-go documents carry. Non-string scalars are rendered with
// fmt.Sprint; unflattenPayload reverses common cases (bool, int) back out.
func flattenPayload(payload map[string]any) map[string]string {
	out := make(map[string]string, len(payload))
	for k, v := range payload {
		switch val := v.(type) {
		case string:
			out[k] = val
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

var knownBoolKeys = map[string]bool{"has_implementation": true}
var knownIntKeys = map[string]bool{"line_start": true, "line_end": true}

func unflattenPayload(meta map[string]string) map[string]any {
	out := make(map[string]any, len(meta))
	for k, v := range meta {
		switch {
		case knownBoolKeys[k]:
			out[k] = v == "true"
		case knownIntKeys[k]:
			if n, err := strconv.Atoi(v); err == nil {
				out[k] = n
				continue
			}
			out[k] = v
		default:
			out[k] = v
		}
	}
	return out
}

// stringOnlyWhere projects filter down to chromem-go's native string-equality
// where-clause shape, reporting ok=false if any value isn't representable.
// Query then passes no where-clause and applies the filter itself to the
// nearest results, so it can return fewer than limit points.
func stringOnlyWhere(filter Filter) (map[string]string, bool) {
	if len(filter) == 0 {
		return nil, true
	}
	where := make(map[string]string, len(filter))
	for k, v := range filter {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		where[k] = s
	}
	return where, true
}
