package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indexgraph/codegraph/internal/model"
)

type stubParser struct{ name string }

func (s *stubParser) Parse(_ context.Context, _ string, _ []byte) (*model.FileExtraction, error) {
	return &model.FileExtraction{}, nil
}
func (s *stubParser) SupportsStreaming() bool   { return false }
func (s *stubParser) EmitsImplementation() bool { return false }

func TestRegistry_LookupResolvesByExtensionCaseInsensitively(t *testing.T) {
	r := NewRegistry()
	py := &stubParser{name: "python"}
	r.Register(py, ".py")

	got, err := r.Lookup("/src/main.PY")
	require.NoError(t, err)
	assert.Same(t, py, got)
}

func TestRegistry_LookupReturnsUnsupportedLanguageError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Lookup("/src/main.zig")
	require.Error(t, err)
	var unsupported *UnsupportedLanguageError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, ".zig", unsupported.Extension)
}

func TestRegistry_FirstRegistrantWinsOnCollision(t *testing.T) {
	r := NewRegistry()
	first := &stubParser{name: "first"}
	second := &stubParser{name: "second"}
	r.Register(first, ".txt")
	r.Register(second, ".txt")

	got, err := r.Lookup("notes.txt")
	require.NoError(t, err)
	assert.Same(t, first, got)
}

func TestRegistry_ExtensionsPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubParser{}, ".go")
	r.Register(&stubParser{}, ".py", ".pyi")

	assert.Equal(t, []string{".go", ".py", ".pyi"}, r.Extensions())
}

func TestDefault_RegistersEveryConfiguredExtension(t *testing.T) {
	r := Default()
	for _, ext := range []string{
		".go", ".py", ".ts", ".tsx", ".js", ".jsx", ".rs", ".rb",
		".css", ".json", ".html", ".htm", ".md", ".markdown",
		".yaml", ".yml", ".toml", ".ini", ".env", ".cfg", ".txt",
	} {
		_, err := r.Lookup("file" + ext)
		assert.NoError(t, err, "expected a parser registered for %s", ext)
	}
}
