package config

// Config represents the complete indexer configuration.
// It can be loaded from .indexer/config.json with environment variable overrides.
type Config struct {
	Embedding EmbeddingConfig `yaml:"embedding" mapstructure:"embedding"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Paths     PathsConfig     `yaml:"paths" mapstructure:"paths"`
}

// EmbeddingConfig configures the embedding provider used to vectorize chunks.
type EmbeddingConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"` // "openai" or "voyage"
	Model    string `yaml:"model" mapstructure:"model"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"` // override; empty uses the provider default
}

// StoreConfig configures the vector store adapter (C8).
type StoreConfig struct {
	URL    string `yaml:"url" mapstructure:"url"`
	APIKey string `yaml:"api_key" mapstructure:"api_key"`
}

// PathsConfig defines which files to index and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for files to index
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns to ignore
}

// Default returns a configuration with sensible defaults. Dimensions are not
// configured directly; they follow from EmbeddingConfig.Provider/Model (see
// internal/embed's per-provider defaults).
func Default() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: "openai",
			Model:    "text-embedding-3-small",
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.go",
				"**/*.ts",
				"**/*.tsx",
				"**/*.py",
				"**/*.pyi",
				"**/*.rb",
				"**/*.rs",
				"**/*.html",
				"**/*.md",
				"**/*.css",
				"**/*.json",
				"**/*.yaml",
				"**/*.yml",
				"**/*.txt",
			},
			Exclude: []string{
				"node_modules/**",
				"vendor/**",
				".git/**",
				"dist/**",
				"build/**",
				"target/**",
				"__pycache__/**",
			},
		},
	}
}
