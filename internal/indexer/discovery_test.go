package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDiscoveryMatchesIncludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "b.txt", "hello")

	d, err := newDiscovery(root, []string{"**/*.go"}, nil)
	require.NoError(t, err)

	files, err := d.walk()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].RelPath)
}

func TestDiscoveryAppliesExcludeGlobs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, "vendor/b.go", "package b")

	d, err := newDiscovery(root, []string{"**/*.go"}, []string{"vendor"})
	require.NoError(t, err)

	files, err := d.walk()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].RelPath)
}

func TestDiscoveryAlwaysIgnoresStateDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.go", "package a")
	writeFile(t, root, ".indexer/chunks.snapshot.json", "{}")

	d, err := newDiscovery(root, []string{"**/*"}, nil)
	require.NoError(t, err)

	files, err := d.walk()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "a.go", files[0].RelPath)
}

func TestDiscoveryRejectsInvalidGlob(t *testing.T) {
	_, err := newDiscovery(t.TempDir(), []string{"["}, nil)
	assert.Error(t, err)
}
