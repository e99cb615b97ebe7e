package indexer

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// discovery walks a project root and returns files matching the configured
// include globs and not matching any exclude glob, as a single flat file
// list: the parser registry (C2), not file discovery, is what decides how a
// file is classified.
type discovery struct {
	rootDir  string
	includes []glob.Glob
	excludes []glob.Glob
}

// newDiscovery compiles the include/exclude glob patterns once; compiled
// gobwas/glob.Glob values are then reused for every file in the walk.
func newDiscovery(rootDir string, includes, excludes []string) (*discovery, error) {
	d := &discovery{rootDir: rootDir}
	for _, pattern := range includes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, &ConfigError{Reason: "invalid include glob " + pattern + ": " + err.Error()}
		}
		d.includes = append(d.includes, g)
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			// "**/" needs a literal slash, so also match at the project root.
			d.includes = append(d.includes, glob.MustCompile(rest, '/'))
		}
	}
	for _, pattern := range excludes {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, &ConfigError{Reason: "invalid exclude glob " + pattern + ": " + err.Error()}
		}
		d.excludes = append(d.excludes, g)
		if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
			d.excludes = append(d.excludes, glob.MustCompile(rest, '/'))
		}
	}
	return d, nil
}

// discoveredFile is one file found by Walk, with the stat info change
// detection needs to classify it.
type discoveredFile struct {
	AbsPath string
	RelPath string
	Size    int64
	Mtime   int64 // unix nanos, avoids importing time into callers that only compare
}

// walk returns every file under d.rootDir matching the include globs and
// none of the exclude globs, plus always skipping the .indexer state
// directory itself.
func (d *discovery) walk() ([]discoveredFile, error) {
	var files []discoveredFile

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.shouldIgnore(relPath) {
			return nil
		}
		if !d.matchesAny(relPath, d.includes) {
			return nil
		}

		files = append(files, discoveredFile{
			AbsPath: path,
			RelPath: relPath,
			Size:    info.Size(),
			Mtime:   info.ModTime().UnixNano(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (d *discovery) shouldIgnore(relPath string) bool {
	if relPath == ".indexer" || strings.HasPrefix(relPath, ".indexer/") {
		return true
	}
	if d.matchesAny(relPath, d.excludes) {
		return true
	}
	// An exclude pattern naming a directory excludes everything beneath it.
	for dir := path.Dir(relPath); dir != "."; dir = path.Dir(dir) {
		if d.matchesAny(dir, d.excludes) {
			return true
		}
	}
	return d.matchesAny(relPath+"/**", d.excludes)
}

func (d *discovery) matchesAny(path string, patterns []glob.Glob) bool {
	for _, p := range patterns {
		if p.Match(path) {
			return true
		}
	}
	return false
}
