// Package syntax defines the uniform contract both syntax front-ends
// (brace-family and indent-family) satisfy, per spec §4.2. Each front-end
// returns the concrete tree-sitter tree (navigable children, line/column
// positions) plus a summary of module-level structure; callers that need
// language-specific traversal (the dataflow engine, Layer 3's syntax walk)
// import the concrete subpackage directly.
package syntax

import sitter "github.com/smacker/go-tree-sitter"

// Import is one module-level import or require() statement.
type Import struct {
	Specifier string // module path / require() literal
	Names     []string // imported identifiers, empty for bare/namespace imports
	Line      int
}

// Function is one module-level function/method declaration.
type Function struct {
	Name   string
	Params []string
	Line   int
}

// Variable is one module-level variable binding.
type Variable struct {
	Name            string
	InitializerHint string // truncated preview of the initializer expression
	Line            int
}

// Parsed is the uniform result of parsing one code file.
type Parsed struct {
	Tree      *sitter.Tree
	Source    []byte
	Imports   []Import
	Functions []Function
	Variables []Variable
}

// Close releases the underlying tree-sitter tree.
func (p *Parsed) Close() {
	if p != nil && p.Tree != nil {
		p.Tree.Close()
	}
}

// FrontEnd is the contract both language families implement.
type FrontEnd interface {
	// CanParse reports whether this front-end handles files at path,
	// based on file extension.
	CanParse(path string) bool
	// Parse builds a Parsed tree from source text. Parse failure is
	// returned as an error; callers surface it as a MEDIUM parse-error
	// finding rather than propagating an exception (spec §4.2).
	Parse(path string, text []byte) (*Parsed, error)
}

// Point converts a tree-sitter point to a 1-indexed line / 0-indexed
// column pair, the convention spec §3 uses for DataflowGraph nodes.
func Point(n *sitter.Node) (line int, col int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}
