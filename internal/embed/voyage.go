package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// voyageDefaultDimensions is the default embedding vector width for
// EMBEDDING_PROVIDER=voyage.
const voyageDefaultDimensions = 512

// voyageProvider calls Voyage AI's embeddings endpoint. Same HTTP-by-hand
// shape as openaiProvider; Voyage's API additionally accepts an
// input_type of "query" or "document", which is where EmbedMode actually
// changes the request instead of being ignored.
type voyageProvider struct {
	apiKey     string
	model      string
	dimensions int
	endpoint   string
	client     *http.Client
	counter    TokenCounter
}

func newVoyageProvider(cfg Config) (*voyageProvider, error) {
	if cfg.APIKey == "" {
		return nil, &ConfigError{Reason: "EMBEDDING_API_KEY required for provider voyage"}
	}
	model := cfg.Model
	if model == "" {
		model = "voyage-code-3"
	}
	dim := cfg.Dimensions
	if dim == 0 {
		dim = voyageDefaultDimensions
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "https://api.voyageai.com/v1/embeddings"
	}
	return &voyageProvider{
		apiKey:     cfg.APIKey,
		model:      model,
		dimensions: dim,
		endpoint:   endpoint,
		client:     &http.Client{Timeout: 30 * time.Second},
		counter:    byteApproxCounter{maxTokens: 120_000, maxItems: 1000},
	}, nil
}

type voyageEmbedRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	InputType string   `json:"input_type,omitempty"`
}

type voyageEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}

func (p *voyageProvider) Embed(ctx context.Context, texts []string, mode EmbedMode) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputType := "document"
	if mode == EmbedModeQuery {
		inputType = "query"
	}

	body, err := json.Marshal(voyageEmbedRequest{Model: p.model, Input: texts, InputType: inputType})
	if err != nil {
		return nil, fmt.Errorf("embed: encode voyage request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embed: build voyage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed: voyage request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed: voyage returned status %d", resp.StatusCode)
	}

	var decoded voyageEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("embed: decode voyage response: %w", err)
	}

	out := make([][]float32, len(texts))
	for _, d := range decoded.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	return out, nil
}

func (p *voyageProvider) Dimensions() int { return p.dimensions }
func (p *voyageProvider) Close() error    { return nil }
func (p *voyageProvider) TokenCounter() TokenCounter { return p.counter }
