package embed

import "fmt"

// Config configures provider construction, sourced from the EMBEDDING_*
// environment keys.
type Config struct {
	// Provider selects the embedding backend: "openai", "voyage", or "mock".
	Provider string

	// Model is the provider-specific model name (EMBEDDING_MODEL).
	Model string

	// Dimensions overrides the provider's default vector dimension; zero
	// means use the provider default.
	Dimensions int

	// APIKey is the provider credential (EMBEDDING_API_KEY).
	APIKey string

	// Endpoint overrides the provider's default API base URL, mainly for
	// tests and self-hosted gateways.
	Endpoint string
}

// ConfigError is a fatal, non-retryable setup problem: missing credentials
// or an unknown provider name. Mirrors indexer.ConfigError's shape, kept
// local so embed doesn't need to import the orchestrator package.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %s", e.Reason) }

// NewProvider builds a Provider for cfg.Provider: EMBEDDING_PROVIDER ∈
// {openai, voyage}, plus "mock" for tests.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return newOpenAIProvider(cfg)
	case "voyage":
		return newVoyageProvider(cfg)
	case "mock", "":
		return NewMockProvider(), nil
	default:
		return nil, &ConfigError{Reason: fmt.Sprintf("unsupported embedding provider %q (supported: openai, voyage, mock)", cfg.Provider)}
	}
}

// tokenCounterFor returns the TokenCounter a provider built by NewProvider
// exposes, falling back to the plain byte-approximation counter for
// providers (like the mock) that don't implement one.
func tokenCounterFor(p Provider) TokenCounter {
	type counterProvider interface {
		TokenCounter() TokenCounter
	}
	if cp, ok := p.(counterProvider); ok {
		return cp.TokenCounter()
	}
	return byteApproxCounter{maxTokens: 300_000, maxItems: 2048}
}
