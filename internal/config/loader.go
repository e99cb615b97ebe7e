package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → project config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given project root.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (EMBEDDING_*, VECTOR_STORE_*)
// 2. Project config file (.indexer/config.json)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".indexer")
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(configDir)

	// Recognized keys are unprefixed, matching spec §6 exactly
	// (EMBEDDING_PROVIDER, not INDEXER_EMBEDDING_PROVIDER).
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.BindEnv("embedding.provider", "EMBEDDING_PROVIDER"); err != nil {
		return nil, fmt.Errorf("bind EMBEDDING_PROVIDER: %w", err)
	}
	if err := v.BindEnv("embedding.model", "EMBEDDING_MODEL"); err != nil {
		return nil, fmt.Errorf("bind EMBEDDING_MODEL: %w", err)
	}
	if err := v.BindEnv("embedding.api_key", "EMBEDDING_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind EMBEDDING_API_KEY: %w", err)
	}
	if err := v.BindEnv("store.url", "VECTOR_STORE_URL"); err != nil {
		return nil, fmt.Errorf("bind VECTOR_STORE_URL: %w", err)
	}
	if err := v.BindEnv("store.api_key", "VECTOR_STORE_API_KEY"); err != nil {
		return nil, fmt.Errorf("bind VECTOR_STORE_API_KEY: %w", err)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, &ConfigError{Reason: err.Error()}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("embedding.provider", defaults.Embedding.Provider)
	v.SetDefault("embedding.model", defaults.Embedding.Model)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.exclude", defaults.Paths.Exclude)
}

// LoadConfig is a convenience function that creates a loader and loads config
// using the current working directory as the project root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific project root.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
