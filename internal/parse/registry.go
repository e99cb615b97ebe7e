// Package parse implements the parser registry (C2): it selects a single
// parser per file extension and exposes the uniform extraction contract
// every language parser in internal/parse/lang satisfies.
package parse

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/indexgraph/codegraph/internal/model"
)

// Parser is the contract every language/family implementation satisfies:
// a "Parse(ctx, path, content) (*FileExtraction, error)" shape returning
// the entity/relation/chunk graph common to every parser.
type Parser interface {
	// Parse extracts entities, relations, and chunks from file content.
	Parse(ctx context.Context, filePath string, content []byte) (*model.FileExtraction, error)

	// SupportsStreaming reports whether this parser has a bounded-memory
	// pathway for very large inputs.
	SupportsStreaming() bool

	// EmitsImplementation reports whether this parser ever produces
	// implementation chunks (some textual parsers only emit metadata).
	EmitsImplementation() bool
}

// UnsupportedLanguageError is returned by Lookup when no parser is
// registered for a file extension.
type UnsupportedLanguageError struct {
	Extension string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: no parser registered for extension %q", e.Extension)
}

// registration pairs a parser with the extensions it was registered under,
// preserving the order Register was called in so extension collisions
// resolve deterministically to the first registrant.
type registration struct {
	ext    string
	parser Parser
}

// Registry maps case-folded file extensions to exactly one parser, as a
// static hash-map table built at startup: no runtime monkey-patching, no
// mutable global registry, and switch-statement dispatch replaced by a
// single map lookup.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Parser
	order []registration
}

// NewRegistry returns an empty registry. Use Register to populate it, or
// Default to get the registry built from every parser in internal/parse/lang.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Parser)}
}

// Register associates a parser with one or more case-folded extensions
// (each including the leading dot, e.g. ".py"). If an extension was already
// claimed by an earlier Register call, that earlier claim wins silently —
// the deterministic tie-break for extension collisions.
func (r *Registry) Register(p Parser, extensions ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		r.order = append(r.order, registration{ext: ext, parser: p})
		if _, claimed := r.byExt[ext]; claimed {
			continue
		}
		r.byExt[ext] = p
	}
}

// Lookup returns the parser registered for filePath's extension.
func (r *Registry) Lookup(filePath string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byExt[ext]
	if !ok {
		return nil, &UnsupportedLanguageError{Extension: ext}
	}
	return p, nil
}

// Extensions returns every extension this registry has a parser for, in
// registration order (duplicates included); the registry tests use it to
// check that order.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	exts := make([]string, 0, len(r.order))
	for _, reg := range r.order {
		exts = append(exts, reg.ext)
	}
	return exts
}
