package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "openai", cfg.Embedding.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedding.Model)
	assert.NotEmpty(t, cfg.Paths.Include)
	assert.NotEmpty(t, cfg.Paths.Exclude)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Embedding.Provider, cfg.Embedding.Provider)
	assert.Equal(t, expected.Embedding.Model, cfg.Embedding.Model)
}

func TestLoadConfig_LoadsFromProjectFile(t *testing.T) {
	tempDir := t.TempDir()
	indexerDir := filepath.Join(tempDir, ".indexer")
	require.NoError(t, os.MkdirAll(indexerDir, 0o755))

	configJSON := `{
		"embedding": {"provider": "voyage", "model": "voyage-code-3"},
		"paths": {"include": ["**/*.go"], "exclude": ["vendor/**"]}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(indexerDir, "config.json"), []byte(configJSON), 0o644))

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "voyage", cfg.Embedding.Provider)
	assert.Equal(t, "voyage-code-3", cfg.Embedding.Model)
	assert.Equal(t, []string{"**/*.go"}, cfg.Paths.Include)
	assert.Equal(t, []string{"vendor/**"}, cfg.Paths.Exclude)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	indexerDir := filepath.Join(tempDir, ".indexer")
	require.NoError(t, os.MkdirAll(indexerDir, 0o755))

	configJSON := `{"embedding": {"provider": "openai", "model": "text-embedding-3-small"}}`
	require.NoError(t, os.WriteFile(filepath.Join(indexerDir, "config.json"), []byte(configJSON), 0o644))

	t.Setenv("EMBEDDING_PROVIDER", "voyage")
	t.Setenv("EMBEDDING_MODEL", "voyage-3-lite")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "voyage", cfg.Embedding.Provider)
	assert.Equal(t, "voyage-3-lite", cfg.Embedding.Model)
}

func TestLoadConfig_StoreEnvironmentVariables(t *testing.T) {
	tempDir := t.TempDir()

	t.Setenv("VECTOR_STORE_URL", "/data/codegraph-store")
	t.Setenv("VECTOR_STORE_API_KEY", "secret")
	t.Setenv("EMBEDDING_API_KEY", "sk-test")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "/data/codegraph-store", cfg.Store.URL)
	assert.Equal(t, "secret", cfg.Store.APIKey)
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
}

func TestLoadConfig_ReturnsErrorForMalformedJSON(t *testing.T) {
	tempDir := t.TempDir()
	indexerDir := filepath.Join(tempDir, ".indexer")
	require.NoError(t, os.MkdirAll(indexerDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(indexerDir, "config.json"), []byte("{not json"), 0o644))

	_, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
}

func TestLoadConfig_ReturnsConfigErrorForInvalidProvider(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv("EMBEDDING_PROVIDER", "anthropic")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	var cfgErr *ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestValidate_RejectsEmptyModel(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Model = "  "
	assert.ErrorIs(t, Validate(cfg), ErrEmptyModel)
}

func TestValidate_RejectsUnknownProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedding.Provider = "anthropic"
	assert.ErrorIs(t, Validate(cfg), ErrInvalidProvider)
}
