package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// openaiDefaultDimensions is the default embedding vector width for
// EMBEDDING_PROVIDER=openai.
const openaiDefaultDimensions = 1536

// openaiProvider calls OpenAI's embeddings endpoint: a bare *http.Client
// building a JSON request by hand and decoding a JSON response.
type openaiProvider struct {
	apiKey     string
	model      string
	dimensions int
	endpoint   string
	client     *http.Client
	counter    TokenCounter
}

func newOpenAIProvider(cfg Config) (*openaiProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "EMBEDDING_API_KEY required for provider openai"}
	}
	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}
	dim := cfg.Dimensions
	if dim == 0 {
		dim = openaiDefaultDimensions
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1/embeddings"
	}
	return &openaiProvider{
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dim,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 30 * time.Second},
		counter:    byteApproxCounter{maxTokens: 300_000, maxItems: 2048},
	}, nil
}

type openaiEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

// Embed implements Provider. mode is accepted for interface parity; OpenAI's
// embedding models take no query/passage distinction.
func (p *openaiProvider) Embed(ctx context.Context, texts []string, _ EmbedMode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(openaiEmbedRequest{Model: p.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("embed: encode openai request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build openai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: openai request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: openai returned status %d", resp.StatusCode)
	}

	var decoded openaiEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("embed: decode openai response: %w", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range decoded.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

func (p *openaiProvider) Dimensions() int { return p.dimensions }
func (p *openaiProvider) Close() error    { return nil }
func (p *openaiProvider) TokenCounter() TokenCounter { return p.counter }
