package indexer

import "fmt"

// UnsupportedLanguageError mirrors parse.UnsupportedLanguageError at the
// orchestrator boundary so callers of this package don't need to import
// internal/parse just to type-switch on it.
type UnsupportedLanguageError struct {
	FilePath  string
	Extension string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %s (extension %q)", e.FilePath, e.Extension)
}

// ParseError wraps a parser failure (grammar error, or a parse that blew its
// time/memory budget). The file is skipped, not fatal.
type ParseError struct {
	FilePath string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %v", e.FilePath, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// HashMismatchError signals a snapshot integrity violation: a chunk's
// recorded hash disagrees with what the current content hashes to, outside
// of a normal modified-file diff. Treated as a reindex of that file.
type HashMismatchError struct {
	FilePath string
	ChunkID  string
}

func (e *HashMismatchError) Error() string {
	return fmt.Sprintf("hash mismatch for chunk %s in %s, reindexing as created", e.ChunkID, e.FilePath)
}

// EmbeddingError failures surface as *embed.EmbeddingError directly (see
// internal/embed/batched.go); the orchestrator doesn't wrap it a second
// time since it already carries the offending chunk id.

// StoreError is a vector store adapter failure surviving retries.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// SnapshotCorruptError reports that the state file was unreadable; the
// caller has already quarantined it and fallen back to a full index.
type SnapshotCorruptError struct {
	Path string
	Err  error
}

func (e *SnapshotCorruptError) Error() string {
	return fmt.Sprintf("snapshot %s corrupt, quarantined: %v", e.Path, e.Err)
}

func (e *SnapshotCorruptError) Unwrap() error { return e.Err }

// ConfigError is a fatal configuration problem: missing credentials,
// invalid globs, or an unreachable store/provider. Callers should exit 2.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s", e.Reason)
}

// FileFailure records one file's skip reason for the run summary.
type FileFailure struct {
	FilePath string
	Err      error
}
