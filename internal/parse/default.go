package parse

import "github.com/indexgraph/codegraph/internal/parse/lang"

// Default builds the registry used in production: every parser in
// internal/parse/lang, wired to its recognized extensions. Order matters
// only where two extensions could plausibly collide, which does not happen
// here — each extension has exactly one natural owner.
func Default() *Registry {
	r := NewRegistry()

	r.Register(lang.NewGo(), ".go")
	r.Register(lang.NewPython(), ".py")
	r.Register(lang.NewTypeScript(), ".ts", ".tsx", ".js", ".jsx")
	r.Register(lang.NewRust(), ".rs")
	r.Register(lang.NewRuby(), ".rb")
	r.Register(lang.NewCSS(), ".css")
	r.Register(lang.NewJSON(), ".json")
	r.Register(lang.NewHTML(), ".html", ".htm")
	r.Register(lang.NewMarkdown(), ".md", ".markdown")
	r.Register(lang.NewConfig(), ".yaml", ".yml", ".toml", ".ini", ".env", ".cfg")
	r.Register(lang.NewText(), ".txt")

	return r
}
