package lang

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"

	"github.com/indexgraph/codegraph/internal/model"
)

// rustParser is one of the two "structural/templating" language families.
type rustParser struct {
	treeSitterBase
}

var rustBranchKinds = map[string]bool{
	"if_expression": true, "while_expression": true, "loop_expression": true,
	"for_expression": true, "match_expression": true,
}
var rustBoolOpKinds = map[string]bool{"binary_expression": true}
var rustBoundaryKinds = map[string]bool{"function_item": true, "impl_item": true}

// NewRust returns the Rust parser (.rs).
func NewRust() *rustParser {
	return &rustParser{treeSitterBase: newTreeSitterBase(sitter.NewLanguage(rust.Language()), "rust")}
}

func (p *rustParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
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
		p.walkItem(root.Child(uint(i)), source, lines, filePath, fileEntity, b, scope)
	}
	return b.build(), nil
}

func (p *rustParser) walkItem(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "use_declaration":
		target := strings.TrimSuffix(strings.TrimPrefix(nodeText(node, source), "use "), ";")
		target = strings.TrimSpace(target)
		if target != "" {
			b.addRelation(fileEntity, target, model.RelationImports)
		}
	case "struct_item", "enum_item":
		p.extractType(node, source, lines, filePath, fileEntity, b, scope)
	case "trait_item":
		p.extractType(node, source, lines, filePath, fileEntity, b, scope)
	case "impl_item":
		p.extractImpl(node, source, lines, filePath, fileEntity, b)
	case "function_item":
		p.extractFunction(node, source, lines, filePath, fileEntity, "", b, scope)
	case "mod_item":
		body := childByType(node, "declaration_list")
		if body != nil {
			for i := 0; i < int(body.ChildCount()); i++ {
				p.walkItem(body.Child(uint(i)), source, lines, filePath, fileEntity, b, scope)
			}
		}
	}
}

func (p *rustParser) extractType(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, scope.qualify(rawName, span.Start))

	kind := "struct"
	if node.Kind() == "enum_item" {
		kind = "enum"
	} else if node.Kind() == "trait_item" {
		kind = "trait"
	}

	b.addEntity(name, model.EntityClass, span, kind+" "+rawName)
	body := extractLines(lines, span.Start, span.End)
	b.addImplementation(name, model.EntityClass, span, body, nil)
	b.addRelation(fileEntity, name, model.RelationContains)
	return name
}

func (p *rustParser) extractImpl(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder) {
	typeNode := node.ChildByFieldName("type")
	traitNode := node.ChildByFieldName("trait")
	if typeNode == nil {
		return
	}
	typeName := nodeText(typeNode, source)
	ownerName := qualified(filePath, typeName)

	if traitNode != nil {
		b.addRelation(ownerName, nodeText(traitNode, source), model.RelationInherits)
	}

	methodScope := newScopeNamer()
	body := childByType(node, "declaration_list")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		member := body.Child(uint(i))
		if member.Kind() == "function_item" {
			p.extractFunction(member, source, lines, filePath, ownerName, typeName, b, methodScope)
		}
	}
}

func (p *rustParser) extractFunction(node *sitter.Node, source []byte, lines []string, filePath, ownerEntity, typeName string, b *extractionBuilder, scope *scopeNamer) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)

	entityType := model.EntityFunction
	var name string
	if typeName != "" {
		entityType = model.EntityMethod
		name = qualified(filePath, typeName, scope.qualify(rawName, span.Start))
	} else {
		name = qualified(filePath, scope.qualify(rawName, span.Start))
	}

	params := node.ChildByFieldName("parameters")
	returnType := node.ChildByFieldName("return_type")
	signature := "fn " + rawName
	if params != nil {
		signature += nodeText(params, source)
	}
	if returnType != nil {
		signature += " -> " + nodeText(returnType, source)
	}

	b.addEntity(name, entityType, span, signature)
	body := extractLines(lines, span.Start, span.End)
	p.scanCalls(node, source, name, b)
	complexity := countComplexityNodes(node, rustBranchKinds, rustBoolOpKinds, rustBoundaryKinds)
	b.addImplementation(name, entityType, span, body, map[string]any{"complexity_nodes": complexity})
	b.addRelation(ownerEntity, name, model.RelationContains)
	return name
}

func (p *rustParser) scanCalls(node *sitter.Node, source []byte, owner string, b *extractionBuilder) {
	walk(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil {
				b.addRelation(owner, nodeText(fn, source), model.RelationCalls)
			}
		case "struct_expression":
			name := n.ChildByFieldName("name")
			if name != nil {
				b.addRelation(owner, nodeText(name, source), model.RelationInstantiates)
			}
		case "function_item":
			return n == node
		}
		return true
	})
}
