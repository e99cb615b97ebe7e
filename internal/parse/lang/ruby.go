package lang

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"

	"github.com/indexgraph/codegraph/internal/model"
)

// rubyParser is the second "structural/templating" language family.
type rubyParser struct {
	treeSitterBase
}

var rubyBranchKinds = map[string]bool{
	"if": true, "unless": true, "while": true, "until": true, "for": true, "case": true, "when": true,
}
var rubyBoolOpKinds = map[string]bool{"binary": true}
var rubyBoundaryKinds = map[string]bool{"method": true, "class": true, "module": true}

// NewRuby returns the Ruby parser (.rb).
func NewRuby() *rubyParser {
	return &rubyParser{treeSitterBase: newTreeSitterBase(sitter.NewLanguage(ruby.Language()), "ruby")}
}

func (p *rubyParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	tree, err := p.parseTree(source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")
	root := tree.RootNode()

	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	b.addEntity(fileEntity, model.EntityFile, nodeSpan(root), "file "+filePath)

	scope := newScopeNamer()
	for i := 0; i < int(root.ChildCount()); i++ {
		p.walkTopLevel(root.Child(uint(i)), source, lines, filePath, fileEntity, b, scope)
	}
	return b.build(), nil
}

func (p *rubyParser) walkTopLevel(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "call":
		method := node.ChildByFieldName("method")
		if method != nil && (nodeText(method, source) == "require" || nodeText(method, source) == "require_relative") {
			args := node.ChildByFieldName("arguments")
			if args != nil {
				target := strings.Trim(strings.TrimSpace(nodeText(args, source)), "()\"' ")
				if target != "" {
					b.addRelation(fileEntity, target, model.RelationImports)
				}
			}
		}
	case "class":
		p.extractClass(node, source, lines, filePath, fileEntity, b, scope)
	case "module":
		body := childByType(node, "body_statement")
		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				p.walkTopLevel(body.Child(uint(i)), source, lines, filePath, fileEntity, b, scope)
			}
		}
	case "method":
		p.extractMethod(node, source, lines, filePath, fileEntity, "", b, scope)
	}
}

func (p *rubyParser) extractClass(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, scope.qualify(rawName, span.Start))

	superclass := node.ChildByFieldName("superclass")
	signature := "class " + rawName
	if superclass != nil {
		signature += " < " + nodeText(superclass, source)
		b.addRelation(name, nodeText(superclass, source), model.RelationInherits)
	}

	b.addEntity(name, model.EntityClass, span, signature)
	body := extractLines(lines, span.Start, span.End)
	b.addImplementation(name, model.EntityClass, span, body, nil)
	b.addRelation(fileEntity, name, model.RelationContains)

	methodScope := newScopeNamer()
	bodyNode := childByType(node, "body_statement")
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			member := bodyNode.Child(uint(i))
			if member.Kind() == "method" {
				p.extractMethod(member, source, lines, filePath, name, rawName, b, methodScope)
			}
		}
	}
}

func (p *rubyParser) extractMethod(node *sitter.Node, source []byte, lines []string, filePath, ownerEntity, className string, b *extractionBuilder, scope *scopeNamer) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)

	entityType := model.EntityFunction
	var name string
	if className != "" {
		entityType = model.EntityMethod
		name = qualified(filePath, className, scope.qualify(rawName, span.Start))
	} else {
		name = qualified(filePath, scope.qualify(rawName, span.Start))
	}

	params := node.ChildByFieldName("parameters")
	signature := "def " + rawName
	if params != nil {
		signature += nodeText(params, source)
	}

	b.addEntity(name, entityType, span, signature)
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndRescues(node, source, name, b)
	complexity := countComplexityNodes(node, rubyBranchKinds, rubyBoolOpKinds, rubyBoundaryKinds)
	b.addImplementation(name, entityType, span, body, map[string]any{"complexity_nodes": complexity})
	b.addRelation(ownerEntity, name, model.RelationContains)
	return name
}

func (p *rubyParser) scanCallsAndRescues(node *sitter.Node, source []byte, owner string, b *extractionBuilder) {
	walk(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "call":
			method := n.ChildByFieldName("method")
			if method != nil {
				callee := nodeText(method, source)
				b.addRelation(owner, callee, model.RelationCalls)
				if isCapitalized(callee) {
					b.addRelation(owner, callee, model.RelationInstantiates)
				}
			}
		case "rescue":
			exceptions := childByType(n, "exceptions")
			if exceptions != nil {
				b.addRelation(owner, strings.TrimSpace(nodeText(exceptions, source)), model.RelationCatches)
			}
		case "method":
			return n == node
		}
		return true
	})
}
