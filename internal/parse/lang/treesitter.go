// Package lang implements the language-specific extractors for C3: one
// per grammar family, each satisfying parse.Parser. The tree-sitter-backed
// languages share a common walk/extract idiom that turns a parse tree into
// the entity/relation/chunk graph every parser produces.
package lang

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/indexgraph/codegraph/internal/model"
)

// treeSitterBase holds the compiled grammar and exposes the tree-walking
// helpers every tree-sitter parser in this package builds on.
type treeSitterBase struct {
	language *sitter.Language
	lang     string
}

func newTreeSitterBase(language *sitter.Language, lang string) treeSitterBase {
	return treeSitterBase{language: language, lang: lang}
}

func (b treeSitterBase) parseTree(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(b.language)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("%s: failed to parse source", b.lang)
	}
	return tree, nil
}

func (b treeSitterBase) SupportsStreaming() bool   { return false }
func (b treeSitterBase) EmitsImplementation() bool { return true }

// nodeText returns the verbatim source text spanned by node.
func nodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return string(source[node.StartByte():node.EndByte()])
}

// nodeSpan converts tree-sitter's 0-indexed row positions into the
// 1-indexed inclusive LineSpan the data model uses everywhere else.
func nodeSpan(node *sitter.Node) model.LineSpan {
	return model.LineSpan{
		Start: int(node.StartPosition().Row) + 1,
		End:   int(node.EndPosition().Row) + 1,
	}
}

// walk recursively visits node and its descendants pre-order; the visitor
// returns false to skip descending into that node's children.
func walk(node *sitter.Node, visit func(*sitter.Node) bool) {
	if node == nil {
		return
	}
	if !visit(node) {
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(uint(i)), visit)
	}
}

func childByType(node *sitter.Node, kind string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(uint(i)); c.Kind() == kind {
			return c
		}
	}
	return nil
}

func childrenByType(node *sitter.Node, kind string) []*sitter.Node {
	var out []*sitter.Node
	if node == nil {
		return out
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if c := node.Child(uint(i)); c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

// scopeNamer tracks the names emitted within each lexical scope so entities
// that collide get "#line_start" appended — per the resolved Open Question,
// only on an actual collision, not unconditionally.
type scopeNamer struct {
	seen map[string]bool
}

func newScopeNamer() *scopeNamer {
	return &scopeNamer{seen: make(map[string]bool)}
}

func (s *scopeNamer) qualify(name string, line int) string {
	if !s.seen[name] {
		s.seen[name] = true
		return name
	}
	return fmt.Sprintf("%s#%d", name, line)
}

// anonName builds a synthetic name for lambdas and arrow functions that
// have no declared identifier.
func anonName(filePath string, line int) string {
	return fmt.Sprintf("anon@%s:%d", filePath, line)
}

// countComplexityNodes tallies branch, loop, and boolean-operator nodes
// under root for a cyclomatic-ish complexity signal: branchKinds are
// counted directly (if/for/while/switch/... statements), boolOpHostKinds
// are node kinds whose direct children are scanned for a literal "&&"/
// "||"/"and"/"or" operator token, and boundaryKinds stop the walk from
// crossing into a nested function or class body, so a method's count never
// absorbs a nested closure's own branches.
func countComplexityNodes(root *sitter.Node, branchKinds, boolOpHostKinds, boundaryKinds map[string]bool) int {
	count := 0
	walk(root, func(n *sitter.Node) bool {
		if n != root && boundaryKinds[n.Kind()] {
			return false
		}
		if branchKinds[n.Kind()] {
			count++
		}
		if boolOpHostKinds[n.Kind()] {
			for i := 0; i < int(n.ChildCount()); i++ {
				switch n.Child(uint(i)).Kind() {
				case "&&", "||", "and", "or":
					count++
				}
			}
		}
		return true
	})
	return count
}

// qualified joins a dotted chain of scope names, e.g. module::Class::method.
func qualified(parts ...string) string {
	filtered := parts[:0]
	for _, p := range parts {
		if p != "" {
			filtered = append(filtered, p)
		}
	}
	return strings.Join(filtered, "::")
}
