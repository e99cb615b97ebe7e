package embed

import (
	"fmt"
	"sync"
)

// priceEntry is one (provider, model) row in the static price table: USD
// per 1,000 tokens.
type priceEntry struct {
	provider string
	model    string
	usdPer1K float64
}

// priceTable is fixed at build time; it is never mutated at runtime.
var priceTable = []priceEntry{
	{provider: "openai", model: "text-embedding-3-small", usdPer1K: 0.00002},
	{provider: "openai", model: "text-embedding-3-large", usdPer1K: 0.00013},
	{provider: "voyage", model: "voyage-code-3", usdPer1K: 0.00018},
	{provider: "voyage", model: "voyage-3-lite", usdPer1K: 0.00002},
}

// priceFor looks up the USD-per-1000-token rate for (provider, model). An
// unknown pair costs 0 rather than failing the run; cost accounting is
// diagnostic, not authoritative billing.
func priceFor(provider, model string) float64 {
	for _, p := range priceTable {
		if p.provider == provider && p.model == model {
			return p.usdPer1K
		}
	}
	return 0
}

// CostAccumulator is a single monotonic counter updated under a mutex: the
// coordinator updates it per batch (possibly from several files' workers at
// once), and callers read it after a run for the summary line.
type CostAccumulator struct {
	Provider    string
	Model       string
	TokensUsed  int64
	USDEstimate float64

	mu sync.Mutex
}

// Add records one batch's token usage against the accumulator's running
// total.
func (c *CostAccumulator) Add(tokens int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.TokensUsed += int64(tokens)
	c.USDEstimate += float64(tokens) / 1000 * priceFor(c.Provider, c.Model)
}

func (c *CostAccumulator) String() string {
	return fmt.Sprintf("%d tokens, ~$%.6f (%s/%s)", c.TokensUsed, c.USDEstimate, c.Provider, c.Model)
}
