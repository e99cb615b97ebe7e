package lang

import (
	"context"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"

	"github.com/indexgraph/codegraph/internal/model"
)

// goParser parses Go source with the standard library's go/parser + go/ast.
// No tree-sitter Go grammar is available to adopt for this family; go/ast
// gives exact, already-typed AST nodes for Go specifically, which a
// generic tree-sitter walk would only approximate.
type goParser struct{}

// NewGo returns the Go-language parser (.go).
func NewGo() *goParser { return &goParser{} }

func (p *goParser) SupportsStreaming() bool   { return false }
func (p *goParser) EmitsImplementation() bool { return true }

func (p *goParser) Parse(_ context.Context, filePath string, source []byte) (*model.FileExtraction, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, source, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(source), "\n")
	b := newExtractionBuilder(filePath)
	fileEntity := filePath
	endLine := fset.Position(file.End()).Line
	b.addEntity(fileEntity, model.EntityFile, model.LineSpan{Start: 1, End: endLine}, "package "+file.Name.Name)

	for _, imp := range file.Imports {
		target := strings.Trim(imp.Path.Value, `"`)
		b.addRelation(fileEntity, target, model.RelationImports)
	}

	scope := newScopeNamer()
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			p.extractFunc(fset, d, source, lines, filePath, fileEntity, b, scope)
		case *ast.GenDecl:
			p.extractGenDecl(fset, d, source, lines, filePath, fileEntity, b, scope)
		}
	}

	return b.build(), nil
}

func (p *goParser) extractGenDecl(fset *token.FileSet, d *ast.GenDecl, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	for _, spec := range d.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok {
			continue
		}
		start := fset.Position(ts.Pos()).Line
		end := fset.Position(ts.End()).Line
		span := model.LineSpan{Start: start, End: end}
		name := qualified(filePath, scope.qualify(ts.Name.Name, start))

		kind := "type"
		if _, isStruct := ts.Type.(*ast.StructType); isStruct {
			kind = "struct"
		} else if _, isIface := ts.Type.(*ast.InterfaceType); isIface {
			kind = "interface"
		}

		b.addEntity(name, model.EntityClass, span, kind+" "+ts.Name.Name)
		body := extractLines(lines, start, end)
		b.addImplementation(name, model.EntityClass, span, body, nil)
		b.addRelation(fileEntity, name, model.RelationContains)

		if iface, ok := ts.Type.(*ast.InterfaceType); ok {
			for _, m := range iface.Methods.List {
				if len(m.Names) == 0 {
					// embedded interface
					if sel, ok := m.Type.(*ast.SelectorExpr); ok {
						b.addRelation(name, sel.Sel.Name, model.RelationInherits)
					} else if id, ok := m.Type.(*ast.Ident); ok {
						b.addRelation(name, id.Name, model.RelationInherits)
					}
				}
			}
		}
	}
}

func (p *goParser) extractFunc(fset *token.FileSet, d *ast.FuncDecl, source []byte, lines []string, filePath, fileEntity string, b *extractionBuilder, scope *scopeNamer) {
	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End()).Line
	span := model.LineSpan{Start: start, End: end}

	entityType := model.EntityFunction
	owner := fileEntity
	className := ""
	if d.Recv != nil && len(d.Recv.List) > 0 {
		entityType = model.EntityMethod
		className = receiverTypeName(d.Recv.List[0].Type)
		owner = qualified(filePath, className)
	}

	// Methods are qualified by receiver first, so same-named methods on
	// different types do not count as a collision.
	name := qualified(filePath, scope.qualify(qualified(className, d.Name.Name), start))

	sig := "func " + d.Name.Name + signatureOf(fset, d, source)
	b.addEntity(name, entityType, span, sig)
	body := extractLines(lines, start, end)
	p.scanCalls(d.Body, name, b)
	complexity := countGoComplexity(d.Body)
	b.addImplementation(name, entityType, span, body, map[string]any{"complexity_nodes": complexity})
	b.addRelation(owner, name, model.RelationContains)
}

// countGoComplexity tallies branch, loop, and boolean-operator nodes in
// body for a cyclomatic-ish complexity signal, stopping at nested function
// literals so a closure's own branches aren't folded into its enclosing
// function's count.
func countGoComplexity(body *ast.BlockStmt) int {
	if body == nil {
		return 0
	}
	count := 0
	ast.Inspect(body, func(n ast.Node) bool {
		if n == nil {
			return false
		}
		if n != ast.Node(body) {
			if _, ok := n.(*ast.FuncLit); ok {
				return false
			}
		}
		switch s := n.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt, *ast.SelectStmt:
			count++
		case *ast.BinaryExpr:
			if s.Op == token.LAND || s.Op == token.LOR {
				count++
			}
		}
		return true
	})
	return count
}

func (p *goParser) scanCalls(body *ast.BlockStmt, owner string, b *extractionBuilder) {
	if body == nil {
		return
	}
	ast.Inspect(body, func(n ast.Node) bool {
		switch call := n.(type) {
		case *ast.CallExpr:
			switch fn := call.Fun.(type) {
			case *ast.Ident:
				b.addRelation(owner, fn.Name, model.RelationCalls)
				if isCapitalized(fn.Name) {
					b.addRelation(owner, fn.Name, model.RelationInstantiates)
				}
			case *ast.SelectorExpr:
				b.addRelation(owner, exprString(fn), model.RelationCalls)
			}
		case *ast.DeferStmt:
			// handled via nested CallExpr inspection
		}
		return true
	})
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}

func exprString(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		return exprString(e.X) + "." + e.Sel.Name
	default:
		return ""
	}
}

func signatureOf(fset *token.FileSet, d *ast.FuncDecl, source []byte) string {
	start := fset.Position(d.Type.Params.Pos()).Offset
	end := fset.Position(d.Type.Params.End()).Offset
	if start < 0 || end > len(source) || start > end {
		return "()"
	}
	return string(source[start:end])
}
