package embed

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// ChunkInput is one chunk queued for embedding: the coordinator's unit of
// work, keyed by the same content_hash the snapshot (C5) and change
// detector (C6) already use for dedup.
type ChunkInput struct {
	ChunkID     string
	Content     string
	ContentHash string
}

// EmbeddingError is a provider failure surviving retries, carrying the
// offending chunk id.
type EmbeddingError struct {
	ChunkID string
	Err     error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for chunk %s: %v", e.ChunkID, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// maxRetryAttempts caps the exponential backoff retry at N attempts with
// jitter.
const maxRetryAttempts = 4

// Coordinator is C7: it packs chunks into provider-sized batches, retries
// transient failures, deduplicates identical content, and accumulates cost.
// Batches are sized against the provider's token+item dual limits rather
// than a fixed batch size, with retry and cost accounting layered on top.
type Coordinator struct {
	provider Provider
	counter  TokenCounter
	costs    *CostAccumulator
}

// NewCoordinator builds a Coordinator around provider, using its
// TokenCounter (or the byte-approximation fallback) and recording spend
// into costs.
func NewCoordinator(provider Provider, costs *CostAccumulator) *Coordinator {
	return &Coordinator{
		provider: provider,
		counter:  tokenCounterFor(provider),
		costs:    costs,
	}
}

// Costs returns the accumulator this coordinator records spend into, so
// callers that didn't hold onto their own reference (e.g. after wiring a
// Coordinator into an Orchestrator) can still read it back for a run summary.
func (c *Coordinator) Costs() *CostAccumulator {
	return c.costs
}

// Embed returns a vector per distinct content_hash among chunks, embedding
// each distinct hash exactly once and batching the
// embed calls under the provider's token and item limits.
func (c *Coordinator) Embed(ctx context.Context, chunks []ChunkInput, mode EmbedMode) (map[string][]float32, error) {
	if len(chunks) == 0 {
		return map[string][]float32{}, nil
	}

	type distinctChunk struct {
		id   string
		hash string
		text string
	}
	seen := make(map[string]bool, len(chunks))
	var distinct []distinctChunk
	for _, ch := range chunks {
		if seen[ch.ContentHash] {
			continue
		}
		seen[ch.ContentHash] = true
		distinct = append(distinct, distinctChunk{id: ch.ChunkID, hash: ch.ContentHash, text: ch.Content})
	}

	maxTokens, maxItems := c.counter.Limits()
	vectors := make(map[string][]float32, len(distinct))

	batch := make([]distinctChunk, 0, maxItems)
	batchTokens := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		texts := make([]string, len(batch))
		for i, b := range batch {
			texts[i] = b.text
		}

		embeddings, err := c.embedWithRetry(ctx, texts, mode, batch[0].id)
		if err != nil {
			return err
		}
		for i, b := range batch {
			if i < len(embeddings) {
				vectors[b.hash] = embeddings[i]
			}
		}
		if c.costs != nil {
			c.costs.Add(batchTokens)
		}
		batch = batch[:0]
		batchTokens = 0
		return nil
	}

	for _, d := range distinct {
		tokens := c.counter.Count(d.text)

		if tokens > maxTokens {
			// Over-budget single item: truncate to the provider limit by
			// token count (approximated via the same 4-bytes-per-token
			// ratio the fallback counter uses) rather than failing the
			// whole batch.
			d.text = truncateToTokens(d.text, maxTokens)
			tokens = c.counter.Count(d.text)
		}

		if len(batch) > 0 && (batchTokens+tokens > maxTokens || len(batch)+1 > maxItems) {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		batch = append(batch, d)
		batchTokens += tokens
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return vectors, nil
}

// embedWithRetry calls the provider with exponential backoff, capped at
// maxRetryAttempts. firstChunkID is only used to label a
// hard failure's EmbeddingError.
func (c *Coordinator) embedWithRetry(ctx context.Context, texts []string, mode EmbedMode, firstChunkID string) ([][]float32, error) {
	var result [][]float32

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxRetryAttempts)), ctx)

	err := backoff.Retry(func() error {
		embeddings, err := c.provider.Embed(ctx, texts, mode)
		if err != nil {
			return err
		}
		result = embeddings
		return nil
	}, policy)
	if err != nil {
		return nil, &EmbeddingError{ChunkID: firstChunkID, Err: err}
	}
	return result, nil
}

// truncateToTokens shrinks text to approximately maxTokens tokens using the
// same 4-bytes-per-token ratio byteApproxCounter assumes.
func truncateToTokens(text string, maxTokens int) string {
	maxBytes := maxTokens * 4
	if maxBytes <= 0 || len(text) <= maxBytes {
		return text
	}
	return text[:maxBytes]
}
