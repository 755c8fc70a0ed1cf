// Package jsts is the brace-family syntax front-end: .ts/.js/.mjs/.cjs.
// Grounded on the teacher's graph/parser_golang.go and graph/parser_java.go
// (both brace-family languages the teacher already front-ends) — same
// tree-sitter parser setup, same ChildByFieldName-driven extraction style.
// TypeScript sources are parsed with the JavaScript grammar: this scanner
// only needs statement/expression shape (imports, calls, assignments),
// not TypeScript's type syntax, so the superset grammar is sufficient and
// avoids a second grammar dependency for type-only syntax that would never
// be inspected.
package jsts

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"github.com/currentlycurrently/acidtest/syntax"
)

// FrontEnd parses the brace-family script languages.
type FrontEnd struct{}

// New returns a brace-family front-end.
func New() *FrontEnd { return &FrontEnd{} }

var extensions = map[string]bool{
	".ts": true, ".js": true, ".mjs": true, ".cjs": true,
}

// CanParse reports whether path has a recognized brace-family extension.
func (FrontEnd) CanParse(path string) bool {
	return extensions[strings.ToLower(filepath.Ext(path))]
}

// Parse builds a Parsed tree for one brace-family file.
func (FrontEnd) Parse(path string, text []byte) (*syntax.Parsed, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, text)
	if err != nil {
		return nil, fmt.Errorf("jsts: parse %s: %w", path, err)
	}
	root := tree.RootNode()
	if root == nil || root.HasError() {
		tree.Close()
		return nil, fmt.Errorf("jsts: syntax error in %s", path)
	}

	p := &syntax.Parsed{Tree: tree, Source: text}
	walkTopLevel(root, text, p)
	return p, nil
}

// walkTopLevel extracts the module summary: imports (including
// require() calls named as implicit imports), function/arrow declarations
// with parameter lists, and simple const/let/var bindings (spec §4.2).
// It visits every node, so declarations and require() calls nested
// inside functions or blocks are recorded too, not only module-level ones.
func walkTopLevel(root *sitter.Node, src []byte, p *syntax.Parsed) {
	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "import_statement":
			extractImportStatement(n, src, p)
		case "lexical_declaration", "variable_declaration":
			extractVariableDeclaration(n, src, p)
		case "function_declaration":
			extractFunctionDeclaration(n, src, p)
		case "call_expression":
			if isRequireCall(n, src) {
				extractRequireImport(n, src, p)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(root)
}

func extractImportStatement(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	var specifier string
	var names []string

	source := n.ChildByFieldName("source")
	if source != nil {
		specifier = strings.Trim(source.Content(src), "'\"")
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "import_clause":
			names = append(names, extractImportClauseNames(child, src)...)
		}
	}

	p.Imports = append(p.Imports, syntax.Import{Specifier: specifier, Names: names, Line: line})
}

func extractImportClauseNames(n *sitter.Node, src []byte) []string {
	var names []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, child.Content(src))
		case "namespace_import":
			names = append(names, child.Content(src))
		case "named_imports":
			for j := 0; j < int(child.ChildCount()); j++ {
				spec := child.Child(j)
				if spec.Type() == "import_specifier" {
					name := spec.ChildByFieldName("name")
					if name != nil {
						names = append(names, name.Content(src))
					}
				}
			}
		}
	}
	return names
}

func isRequireCall(n *sitter.Node, src []byte) bool {
	fn := n.ChildByFieldName("function")
	return fn != nil && fn.Type() == "identifier" && fn.Content(src) == "require"
}

func extractRequireImport(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	args := n.ChildByFieldName("arguments")
	if args == nil || args.ChildCount() == 0 {
		return
	}
	arg := firstNamedChild(args)
	if arg == nil || arg.Type() != "string" {
		return
	}
	specifier := strings.Trim(arg.Content(src), "'\"")
	p.Imports = append(p.Imports, syntax.Import{Specifier: specifier, Line: line})
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

func extractFunctionDeclaration(n *sitter.Node, src []byte, p *syntax.Parsed) {
	line, _ := syntax.Point(n)
	nameNode := n.ChildByFieldName("name")
	name := ""
	if nameNode != nil {
		name = nameNode.Content(src)
	}
	params := extractParamNames(n.ChildByFieldName("parameters"), src)
	p.Functions = append(p.Functions, syntax.Function{Name: name, Params: params, Line: line})
}

func extractParamNames(params *sitter.Node, src []byte) []string {
	if params == nil {
		return nil
	}
	var names []string
	for i := 0; i < int(params.ChildCount()); i++ {
		child := params.Child(i)
		switch child.Type() {
		case "identifier":
			names = append(names, child.Content(src))
		case "required_parameter", "optional_parameter", "rest_pattern", "assignment_pattern":
			if pat := child.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
				names = append(names, pat.Content(src))
			} else if child.ChildCount() > 0 {
				leaf := firstNamedChild(child)
				if leaf != nil && leaf.Type() == "identifier" {
					names = append(names, leaf.Content(src))
				}
			}
		}
	}
	return names
}

// extractVariableDeclaration extracts simple const/let/var bindings,
// including arrow/function expression assignments (treated as Function
// entries, since `const f = () => {...}` is a function declaration in
// every sense the dataflow engine and Layer 3 care about).
func extractVariableDeclaration(n *sitter.Node, src []byte, p *syntax.Parsed) {
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "variable_declarator" {
			continue
		}
		line, _ := syntax.Point(child)
		nameNode := child.ChildByFieldName("name")
		valueNode := child.ChildByFieldName("value")
		if nameNode == nil {
			continue
		}
		name := nameNode.Content(src)

		if valueNode != nil && (valueNode.Type() == "arrow_function" || valueNode.Type() == "function" || valueNode.Type() == "function_expression") {
			params := extractParamNames(valueNode.ChildByFieldName("parameters"), src)
			p.Functions = append(p.Functions, syntax.Function{Name: name, Params: params, Line: line})
			continue
		}

		hint := ""
		if valueNode != nil {
			hint = truncate(valueNode.Content(src), 60)
		}
		p.Variables = append(p.Variables, syntax.Variable{Name: name, InitializerHint: hint, Line: line})
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
