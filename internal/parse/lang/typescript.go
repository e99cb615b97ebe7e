package lang

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/indexgraph/codegraph/internal/model"
)

// typeScriptParser covers the "curly-brace scripting language with a typed
// superset" family.
type typeScriptParser struct {
	treeSitterBase
}

var tsBranchKinds = map[string]bool{
	"if_statement": true, "for_statement": true, "for_in_statement": true,
	"while_statement": true, "do_statement": true, "switch_statement": true,
	"ternary_expression": true,
}
var tsBoolOpKinds = map[string]bool{"logical_expression": true, "binary_expression": true}
var tsBoundaryKinds = map[string]bool{
	"function_declaration": true, "function_expression": true, "arrow_function": true,
	"method_definition": true, "class_declaration": true, "abstract_class_declaration": true,
}

// NewTypeScript returns the TypeScript/JavaScript parser (.ts, .tsx, .js, .jsx).
func NewTypeScript() *typeScriptParser {
	return &typeScriptParser{treeSitterBase: newTreeSitterBase(sitter.NewLanguage(typescript.LanguageTypescript()), "typescript")}
}

func (p *typeScriptParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
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

func (p *typeScriptParser) walkTopLevel(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	if node == nil {
		return
	}
	switch node.Kind() {
	case "import_statement":
		p.extractImport(node, source, fileEntity, b)
	case "class_declaration", "abstract_class_declaration":
		p.extractClass(node, source, lines, filePath, fileEntity, b, scope)
	case "function_declaration":
		p.extractFunction(node, source, lines, filePath, fileEntity, "", b, scope)
	case "export_statement":
		for i := 0; i < int(node.ChildCount()); i++ {
			p.walkTopLevel(node.Child(uint(i)), source, lines, filePath, fileEntity, b, scope)
		}
	}
}

func (p *typeScriptParser) extractImport(node *sitter.Node, source []byte, fileEntity string, b *extractionBuilder) {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return
	}
	target := strings.Trim(nodeText(sourceNode, source), `"'`)
	if target != "" {
		b.addRelation(fileEntity, target, model.RelationImports)
	}
}

func (p *typeScriptParser) extractClass(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, scope.qualify(rawName, span.Start))

	heritage := childByType(node, "class_heritage")
	signature := "class " + rawName
	if heritage != nil {
		signature += " " + nodeText(heritage, source)
		walk(heritage, func(n *sitter.Node) bool {
			if n.Kind() == "identifier" || n.Kind() == "type_identifier" {
				b.addRelation(name, nodeText(n, source), model.RelationInherits)
			}
			return true
		})
	}

	b.addEntity(name, model.EntityClass, span, signature)
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndThrows(node, source, name, b)
	b.addImplementation(name, model.EntityClass, span, body, nil)
	b.addRelation(fileEntity, name, model.RelationContains)

	bodyNode := node.ChildByFieldName("body")
	methodScope := newScopeNamer()
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			member := bodyNode.Child(uint(i))
			if member.Kind() == "method_definition" {
				p.extractMethod(member, source, lines, filePath, name, rawName, b, methodScope)
			}
		}
	}
}

func (p *typeScriptParser) extractMethod(node *sitter.Node, source []byte, lines []string, filePath, ownerEntity, className string, b *extractionBuilder, scope *scopeNamer) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, className, scope.qualify(rawName, span.Start))

	params := node.ChildByFieldName("parameters")
	signature := className + "." + rawName
	if params != nil {
		signature += nodeText(params, source)
	} else {
		signature += "()"
	}

	b.addEntity(name, model.EntityMethod, span, signature)
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndThrows(node, source, name, b)
	complexity := countComplexityNodes(node, tsBranchKinds, tsBoolOpKinds, tsBoundaryKinds)
	b.addImplementation(name, model.EntityMethod, span, body, map[string]any{"complexity_nodes": complexity})
	b.addRelation(ownerEntity, name, model.RelationContains)
}

func (p *typeScriptParser) extractFunction(node *sitter.Node, source []byte, lines []string, filePath, ownerEntity, className string, b *extractionBuilder, scope *scopeNamer) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, scope.qualify(rawName, span.Start))

	params := node.ChildByFieldName("parameters")
	isAsync := strings.HasPrefix(strings.TrimSpace(nodeText(node, source)), "async ")
	signature := "function " + rawName
	if params != nil {
		signature += nodeText(params, source)
	}

	b.addEntity(name, model.EntityFunction, span, signature, boolTag("async", isAsync))
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndThrows(node, source, name, b)
	complexity := countComplexityNodes(node, tsBranchKinds, tsBoolOpKinds, tsBoundaryKinds)
	b.addImplementation(name, model.EntityFunction, span, body, map[string]any{"async": isAsync, "complexity_nodes": complexity})
	b.addRelation(ownerEntity, name, model.RelationContains)
	return name
}

func (p *typeScriptParser) scanCallsAndThrows(node *sitter.Node, source []byte, owner string, b *extractionBuilder) {
	walk(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "call_expression":
			fn := n.ChildByFieldName("function")
			if fn != nil {
				callee := nodeText(fn, source)
				b.addRelation(owner, callee, model.RelationCalls)
			}
		case "new_expression":
			ctor := n.ChildByFieldName("constructor")
			if ctor != nil {
				b.addRelation(owner, nodeText(ctor, source), model.RelationInstantiates)
			}
		case "throw_statement":
			text := strings.TrimSpace(strings.TrimPrefix(nodeText(n, source), "throw"))
			text = strings.TrimSuffix(text, ";")
			if idx := strings.Index(text, "("); idx > 0 {
				text = text[:idx]
			}
			text = strings.TrimPrefix(strings.TrimSpace(text), "new ")
			if text != "" {
				b.addRelation(owner, strings.TrimSpace(text), model.RelationRaises)
			}
		case "catch_clause":
			param := n.ChildByFieldName("parameter")
			if param != nil {
				b.addRelation(owner, nodeText(param, source), model.RelationCatches)
			}
		case "class_declaration", "function_declaration", "method_definition":
			return n == node
		}
		return true
	})
}
