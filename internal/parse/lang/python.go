package lang

import (
	"context"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/indexgraph/codegraph/internal/model"
)

// pythonParser extracts entities and relations from Python source by
// walking the tree-sitter parse tree and extracting classes and functions.
type pythonParser struct {
	treeSitterBase
}

var pythonBranchKinds = map[string]bool{
	"if_statement": true, "elif_clause": true,
	"for_statement": true, "while_statement": true,
}
var pythonBoolOpKinds = map[string]bool{"boolean_operator": true}
var pythonBoundaryKinds = map[string]bool{"function_definition": true, "class_definition": true}

// NewPython returns the dynamic-scripting-language parser (.py).
func NewPython() *pythonParser {
	return &pythonParser{treeSitterBase: newTreeSitterBase(sitter.NewLanguage(python.Language()), "python")}
}

func (p *pythonParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
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
	p.walkModule(root, source, lines, filePath, fileEntity, b, scope)

	return b.build(), nil
}

func (p *pythonParser) walkModule(root *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(uint(i))
		switch child.Kind() {
		case "import_statement", "import_from_statement":
			p.extractImport(child, source, fileEntity, b)
		case "class_definition":
			p.extractClass(child, source, lines, filePath, fileEntity, b, scope)
		case "function_definition":
			p.extractFunction(child, source, lines, filePath, fileEntity, "", b, scope)
		case "decorated_definition":
			p.extractDecorated(child, source, lines, filePath, fileEntity, "", b, scope)
		}
	}
}

func (p *pythonParser) extractImport(node *sitter.Node, source []byte, fileEntity string, b *extractionBuilder) {
	text := nodeText(node, source)
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(text, "import"), "from"))
	if idx := strings.IndexAny(target, " \t"); idx > 0 && strings.HasPrefix(text, "from") {
		// "from X import Y" -> module name is the first token
		target = strings.Fields(target)[0]
	} else {
		target = strings.TrimSpace(strings.Split(target, ",")[0])
		target = strings.Fields(target)[0]
	}
	if target == "" {
		return
	}
	b.addRelation(fileEntity, target, model.RelationImports)
}

func (p *pythonParser) extractDecorated(node *sitter.Node, source []byte, lines []string, filePath, fileEntity, className string, b *extractionBuilder, scope *scopeNamer) {
	var decoratorNames []string
	var inner *sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		switch child.Kind() {
		case "decorator":
			decoratorNames = append(decoratorNames, strings.TrimPrefix(nodeText(child, source), "@"))
		case "function_definition", "class_definition":
			inner = child
		}
	}
	if inner == nil {
		return
	}

	var entityName string
	switch inner.Kind() {
	case "function_definition":
		entityName = p.extractFunction(inner, source, lines, filePath, fileEntity, className, b, scope)
	case "class_definition":
		entityName = p.extractClass(inner, source, lines, filePath, fileEntity, b, scope)
	}
	for _, dec := range decoratorNames {
		b.addRelation(entityName, strings.TrimSpace(dec), model.RelationDecorates)
	}
}

func (p *pythonParser) extractClass(node *sitter.Node, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	rawName := nodeText(nameNode, source)
	span := nodeSpan(node)
	name := qualified(filePath, scope.qualify(rawName, span.Start))

	superclasses := node.ChildByFieldName("superclasses")
	signature := "class " + rawName
	if superclasses != nil {
		signature += nodeText(superclasses, source)
		for _, base := range splitArgList(nodeText(superclasses, source)) {
			if base != "" {
				b.addRelation(name, base, model.RelationInherits)
			}
		}
	}

	b.addEntity(name, model.EntityClass, span, signature)
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndExceptions(node, source, name, b)
	b.addImplementation(name, model.EntityClass, span, body, nil)
	b.addRelation(fileEntity, name, model.RelationContains)

	methodScope := newScopeNamer()
	bodyNode := node.ChildByFieldName("body")
	if bodyNode != nil {
		for i := 0; i < int(bodyNode.ChildCount()); i++ {
			member := bodyNode.Child(uint(i))
			switch member.Kind() {
			case "function_definition":
				p.extractFunction(member, source, lines, filePath, name, rawName, b, methodScope)
			case "decorated_definition":
				p.extractDecorated(member, source, lines, filePath, name, rawName, b, methodScope)
			}
		}
	}
	return name
}

func (p *pythonParser) extractFunction(node *sitter.Node, source []byte, lines []string, filePath, ownerEntity, className string, b *extractionBuilder, scope *scopeNamer) string {
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

	paramsNode := node.ChildByFieldName("parameters")
	returnNode := node.ChildByFieldName("return_type")
	signature := "def " + rawName
	if paramsNode != nil {
		signature += nodeText(paramsNode, source)
	} else {
		signature += "()"
	}
	if returnNode != nil {
		signature += " -> " + nodeText(returnNode, source)
	}

	isAsync := strings.HasPrefix(strings.TrimSpace(nodeText(node, source)), "async ")

	b.addEntity(name, entityType, span, signature, boolTag("async", isAsync))
	body := extractLines(lines, span.Start, span.End)
	p.scanCallsAndExceptions(node, source, name, b)
	complexity := countComplexityNodes(node, pythonBranchKinds, pythonBoolOpKinds, pythonBoundaryKinds)
	b.addImplementation(name, entityType, span, body, map[string]any{"async": isAsync, "complexity_nodes": complexity})
	b.addRelation(ownerEntity, name, model.RelationContains)
	return name
}

// scanCallsAndExceptions walks a function/class body for call,
// raise_statement, and except_clause nodes, emitting calls,
// raises, and catches relations with best-effort name resolution
// (unresolved callees are still emitted, using the raw text).
func (p *pythonParser) scanCallsAndExceptions(node *sitter.Node, source []byte, owner string, b *extractionBuilder) {
	walk(node, func(n *sitter.Node) bool {
		switch n.Kind() {
		case "call":
			fn := n.ChildByFieldName("function")
			if fn != nil {
				callee := nodeText(fn, source)
				b.addRelation(owner, callee, model.RelationCalls)
				if callee != "" && isCapitalized(lastSegment(callee)) {
					b.addRelation(owner, callee, model.RelationInstantiates)
				}
			}
		case "raise_statement":
			exc := strings.TrimSpace(strings.TrimPrefix(nodeText(n, source), "raise"))
			exc = strings.Split(exc, "(")[0]
			if exc != "" {
				b.addRelation(owner, strings.TrimSpace(exc), model.RelationRaises)
			}
		case "except_clause":
			text := strings.TrimSpace(strings.TrimPrefix(nodeText(n, source), "except"))
			text = strings.TrimSuffix(text, ":")
			text = strings.SplitN(text, " as ", 2)[0]
			text = strings.TrimSpace(text)
			if text != "" {
				b.addRelation(owner, text, model.RelationCatches)
			}
		case "function_definition", "class_definition":
			return n == node
		}
		return true
	})
}

func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

func splitArgList(text string) []string {
	text = strings.TrimPrefix(text, "(")
	text = strings.TrimSuffix(text, ")")
	if text == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func lastSegment(dotted string) string {
	parts := strings.Split(dotted, ".")
	return parts[len(parts)-1]
}

func isCapitalized(s string) bool {
	if s == "" {
		return false
	}
	r := s[0]
	return r >= 'A' && r <= 'Z'
}

func boolTag(key string, v bool) string {
	if v {
		return key + ":true"
	}
	return key + ":false"
}
