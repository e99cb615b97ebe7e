// Package observe implements C4, the observation extractor: a post-parse
// pass that appends advisory string tags to each entity's observation list.
// Tag schema is fixed; thresholds and pattern heuristics are configured once
// here as compile-time-constant policy tables and never mutated at runtime.
package observe

// complexityThresholds buckets a function/method body's branch/loop/
// boolean-operator node count into three complexity tiers: low, medium,
// high. These exact cut points are a design decision rather than a value
// derived from any external source.
var complexityThresholds = struct {
	low    int
	medium int
}{
	low:    3,
	medium: 8,
}

// classifyComplexity buckets a branch/loop/boolean-operator node count into
// low/medium/high.
func classifyComplexity(nodeCount int) string {
	switch {
	case nodeCount <= complexityThresholds.low:
		return "low"
	case nodeCount <= complexityThresholds.medium:
		return "medium"
	default:
		return "high"
	}
}

// patternHeuristics maps a name suffix to the design pattern tag it
// implies. Matching is name-based only — no type-graph analysis — since
// these observations are advisory: absence is never an error.
var patternHeuristics = []struct {
	suffix  string
	pattern string
}{
	{suffix: "Factory", pattern: "factory"},
	{suffix: "Builder", pattern: "builder"},
	{suffix: "Singleton", pattern: "singleton"},
	{suffix: "Observer", pattern: "observer"},
	{suffix: "Listener", pattern: "observer"},
	{suffix: "Adapter", pattern: "adapter"},
	{suffix: "Decorator", pattern: "decorator"},
	{suffix: "Strategy", pattern: "strategy"},
	{suffix: "Visitor", pattern: "visitor"},
	{suffix: "Proxy", pattern: "proxy"},
	{suffix: "Repository", pattern: "repository"},
	{suffix: "Middleware", pattern: "middleware"},
}

// singletonNames additionally tags entities whose name is exactly one of
// these common singleton-accessor spellings.
var singletonNames = map[string]bool{
	"getInstance": true,
	"GetInstance": true,
	"instance":    true,
	"shared":      true,
}
