// Package pyindent is the indent-family syntax front-end: .py. Grounded
// on the teacher's graph/parser_python.go — same tree-sitter parser setup
// and ChildByFieldName-driven extraction, adapted to the narrower module
// summary this scanner needs (imports, function parameter lists,
// module-level assignments) rather than the teacher's full class/method
// graph.
package pyindent

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/currentlycurrently/acidtest/syntax"
)

// FrontEnd parses the indent-family language.
type FrontEnd struct{}

// New returns an indent-family front-end.
func New() *FrontEnd { return &FrontEnd{} }

// CanParse reports whether path is a Python source file.
func (FrontEnd) CanParse(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".py"
}

// Parse builds a Parsed tree for one Python file.
func (FrontEnd) Parse(path string, text []byte) (*syntax.Parsed, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		return nil, fmt.Errorf("pyindent: parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("pyindent: syntax error in %s", path)
	}

	p := &syntax.Parsed{Tree: tree, Source: text}
	walkModule(root, text, p)
	return p, nil
}

// walkModule extracts `import X`, `from X import Y`, function definitions
// with parameter identifiers, and module-level assignments (spec §4.2).
func walkModule(root *sitter.Node, src []byte, p *syntax.Parsed) {
	for i := 0; i < int(root.ChildCount()); i++ {
		walkStatement(root.Child(i), src, p)
	}
}

func walkStatement(n *sitter.Node, src []byte, p *syntax.Parsed) {
	switch n.Type() {
	case "import_statement":
		extractImport(n, src, p)
	case "import_from_statement":
		extractImportFrom(n, src, p)
	case "function_definition":
		extractFunctionDef(n, src, p)
	case "expression_statement":
		extractAssignment(n, src, p)
	case "decorated_definition":
		for i := 0; i < int(n.ChildCount()); i++ {
			walkStatement(n.Child(i), src, p)
		}
	}
}

func extractImport(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			p.Imports = append(p.Imports, syntax.Import{Specifier: child.Content(src), Line: line})
		case "aliased_import":
			name := child.ChildByFieldName("name")
			if name != nil {
				p.Imports = append(p.Imports, syntax.Import{Specifier: name.Content(src), Line: line})
			}
		}
	}
}

func extractImportFrom(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	moduleNode := n.ChildByFieldName("module_name")
	module := ""
	if moduleNode != nil {
		module = moduleNode.Content(src)
	}

	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "dotted_name":
			if child == moduleNode {
				continue
			}
			names = append(names, child.Content(src))
		case "aliased_import":
			name := child.ChildByFieldName("name")
			if name != nil {
				names = append(names, name.Content(src))
			}
		case "wildcard_import":
			names = append(names, "*")
		}
	}
	p.Imports = append(p.Imports, syntax.Import{Specifier: module, Names: names, Line: line})
}

func extractFunctionDef(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}

	var params []string
	paramsNode := n.ChildByFieldName("parameters")
	if paramsNode != nil {
		for i := 0; i < int(paramsNode.ChildCount()); i++ {
			param := paramsNode.Child(i)
			switch param.Type() {
			case "identifier":
				params = append(params, param.Content(src))
			case "typed_parameter", "default_parameter", "typed_default_parameter":
				id := firstIdentifier(param, src)
				if id != "" {
					params = append(params, id)
				}
			}
		}
	}
	p.Functions = append(p.Functions, syntax.Function{Name: name, Params: params, Line: line})
}

func firstIdentifier(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.Type() == "identifier" {
			return c.Content(src)
		}
	}
	return ""
}

// extractAssignment captures module-level `name = expr` bindings. Only
// simple single-target assignments are recorded, matching the narrow
// scope Layer 3 and the dataflow engine need.
func extractAssignment(n *sitter.Node, src []byte, p *syntax.Parsed) {
	assign := firstNamedChild(n)
	if assign == nil || assign.Type() != "assignment" {
		return
	}
	left := assign.ChildByFieldName("left")
	right := assign.ChildByFieldName("right")
	if left == nil || left.Type() != "identifier" {
		return
	}
	line, _ := syntax.Point(n)
	hint := ""
	if right != nil {
		hint = truncate(right.Content(src), 60)
	}
	p.Variables = append(p.Variables, syntax.Variable{Name: left.Content(src), InitializerHint: hint, Line: line})
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			return c
		}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
