package dataflow

import (
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/currentlycurrently/acidtest/syntax"
)

// sinkSubtypeByName maps recognized sink identifiers (spec §4.7) to their
// sink subtype.
var sinkSubtypeByName = map[string]SinkSubtype{
	"exec": SinkCommandExecution, "execSync": SinkCommandExecution,
	"spawn": SinkCommandExecution, "spawnSync": SinkCommandExecution,
	"execFile": SinkCommandExecution, "execFileSync": SinkCommandExecution,
	"eval": SinkCodeEvaluation, "Function": SinkCodeEvaluation,
	"fetch": SinkNetworkRequest,
	"writeFile": SinkFileWrite, "writeFileSync": SinkFileWrite,
	"appendFile": SinkFileWrite, "appendFileSync": SinkFileWrite,
	"require": SinkDynamicImport, "import": SinkDynamicImport,
}

// builder holds the per-file state used while walking a brace-family
// syntax tree into a Graph. No lexical scoping is modeled: vars records
// only the most recent node for each name, per spec §4.7's explicit "no
// lexical-scope refinement in v1".
type builder struct {
	g       *Graph
	src     []byte
	vars    map[string]string // variable name -> most recent node ID
	props   map[string]string // "obj.prop" -> most recent property node ID
	counter int
}

// BuildJSTS builds a per-file dataflow graph from a parsed brace-family
// tree (spec §4.7's construction table).
func BuildJSTS(parsed *syntax.Parsed) *Graph {
	b := &builder{
		g:     NewGraph(),
		src:   parsed.Source,
		vars:  make(map[string]string),
		props: make(map[string]string),
	}
	b.walkStatements(parsed.Tree.RootNode())
	return b.g
}

func (b *builder) newID(kind, name string, line int) string {
	b.counter++
	return fmt.Sprintf("%s:%s:%d:%d", kind, name, line, b.counter)
}

// walkStatements dispatches every direct child of a block-like node as a
// statement.
func (b *builder) walkStatements(n *sitter.Node) {
	if n == nil {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		b.walkStatement(n.Child(i))
	}
}

func (b *builder) walkStatement(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		b.handleDeclaration(n)
	case "expression_statement":
		if child := firstNamed(n); child != nil {
			b.evalExpr(child)
		}
	case "function_declaration":
		b.handleFunctionDeclaration(n)
	case "return_statement":
		if child := firstNamed(n); child != nil {
			b.evalExpr(child)
		}
	case "statement_block", "program":
		b.walkStatements(n)
	default:
		// Generic fallback: recurse so constructs nested in control-flow
		// statements (if/for/while/try bodies) are still visited. No
		// branch-sensitivity is modeled (spec Non-goals).
		for i := 0; i < int(n.ChildCount()); i++ {
			b.walkStatement(n.Child(i))
		}
	}
}

func firstNamed(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c.IsNamed() {
			return c
		}
	}
	return nil
}

// handleDeclaration processes `const/let/var` declarations, per the
// construction table's first row.
func (b *builder) handleDeclaration(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		decl := n.Child(i)
		if decl.Type() != "variable_declarator" {
			continue
		}
		nameNode := decl.ChildByFieldName("name")
		valueNode := decl.ChildByFieldName("value")
		if nameNode == nil || nameNode.Type() != "identifier" {
			continue // destructuring patterns are out of scope for v1
		}
		name := nameNode.Content(b.src)
		line, col := syntax.Point(decl)

		var rhsID string
		if valueNode != nil && isFunctionLike(valueNode) {
			b.handleFunctionLike(valueNode)
		} else if valueNode != nil {
			rhsID = b.evalExpr(valueNode)
		}

		varID := b.newID("var", name, line)
		b.g.AddNode(Node{ID: varID, Kind: NodeVariable, Identifier: name, Line: line, Column: col})
		if rhsID != "" {
			b.g.AddEdge(Edge{From: rhsID, To: varID, Kind: EdgeAssignment})
		}
		b.vars[name] = varID
	}
}

func isFunctionLike(n *sitter.Node) bool {
	switch n.Type() {
	case "arrow_function", "function", "function_expression":
		return true
	}
	return false
}

// handleFunctionDeclaration processes a top-level `function f(params) {...}`.
func (b *builder) handleFunctionDeclaration(n *sitter.Node) {
	b.registerParams(n.ChildByFieldName("parameters"))
	b.walkStatements(n.ChildByFieldName("body"))
}

// handleFunctionLike processes an arrow/function expression assigned to a
// variable: its parameters are tool-handler sources (spec §4.7's
// "function parameters of tool handlers" row — applied uniformly to
// every function in the file, since this engine performs no call-graph
// analysis to identify which functions are actually invoked as tool
// handlers; see DESIGN.md's Open Question resolution).
func (b *builder) handleFunctionLike(n *sitter.Node) {
	b.registerParams(n.ChildByFieldName("parameters"))
	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	if body.Type() == "statement_block" {
		b.walkStatements(body)
	} else {
		b.evalExpr(body)
	}
}

func (b *builder) registerParams(params *sitter.Node) {
	if params == nil {
		return
	}
	for i := 0; i < int(params.ChildCount()); i++ {
		p := params.Child(i)
		var idNode *sitter.Node
		switch p.Type() {
		case "identifier":
			idNode = p
		case "required_parameter", "optional_parameter", "assignment_pattern":
			idNode = firstIdentifierDescendant(p)
		}
		if idNode == nil {
			continue
		}
		name := idNode.Content(b.src)
		line, col := syntax.Point(idNode)
		id := b.newID("param", name, line)
		b.g.AddNode(Node{ID: id, Kind: NodeSource, Identifier: name, Line: line, Column: col,
			Meta: NodeMeta{SourceSubtype: SourceUserInput}})
		b.vars[name] = id
	}
}

func firstIdentifierDescendant(n *sitter.Node) *sitter.Node {
	if n.Type() == "identifier" {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstIdentifierDescendant(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// evalExpr evaluates an expression node, creating any source/sink/
// operation nodes it needs, and returns the node ID representing its
// value — or "" if the expression carries no taint-relevant value.
func (b *builder) evalExpr(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type() {
	case "identifier":
		return b.vars[n.Content(b.src)]
	case "parenthesized_expression":
		return b.evalExpr(firstNamed(n))
	case "member_expression":
		return b.evalMemberExpression(n)
	case "subscript_expression":
		return b.evalSubscriptExpression(n)
	case "call_expression":
		return b.evalCallExpression(n)
	case "new_expression":
		return b.evalNewExpression(n)
	case "template_string":
		return b.evalTemplateString(n)
	case "object":
		return b.evalObject(n)
	case "assignment_expression":
		return b.evalAssignment(n)
	case "binary_expression":
		return b.evalBinary(n)
	case "arrow_function", "function", "function_expression":
		b.handleFunctionLike(n)
		return ""
	default:
		return ""
	}
}

// evalMemberExpression handles `obj.prop`, including the
// `process.env.X` source special case.
func (b *builder) evalMemberExpression(n *sitter.Node) string {
	object := n.ChildByFieldName("object")
	property := n.ChildByFieldName("property")
	if object == nil || property == nil {
		return ""
	}
	propName := property.Content(b.src)

	if envVar, ok := processEnvVarName(object, property, b.src); ok {
		line, col := syntax.Point(n)
		id := b.newID("env", envVar, line)
		b.g.AddNode(Node{ID: id, Kind: NodeSource, Identifier: envVar, Line: line, Column: col,
			Meta: NodeMeta{SourceSubtype: SourceEnvVar, EnvVar: envVar}})
		return id
	}

	if object.Type() == "identifier" {
		key := object.Content(b.src) + "." + propName
		if id, ok := b.props[key]; ok {
			return id
		}
		if objID, ok := b.vars[object.Content(b.src)]; ok {
			line, col := syntax.Point(n)
			id := b.newID("prop", propName, line)
			b.g.AddNode(Node{ID: id, Kind: NodeProperty, Identifier: propName, Line: line, Column: col})
			b.g.AddEdge(Edge{From: objID, To: id, Kind: EdgePropertyRead, Label: propName})
			return id
		}
	}
	return ""
}

// processEnvVarName recognizes `process.env.X` via the dotted form;
// the subscript form `process.env["X"]` is handled in
// evalSubscriptExpression instead.
func processEnvVarName(object, property *sitter.Node, src []byte) (string, bool) {
	if object.Type() != "member_expression" {
		return "", false
	}
	innerObj := object.ChildByFieldName("object")
	innerProp := object.ChildByFieldName("property")
	if innerObj == nil || innerProp == nil {
		return "", false
	}
	if innerObj.Content(src) != "process" || innerProp.Content(src) != "env" {
		return "", false
	}
	return property.Content(src), true
}

func (b *builder) evalSubscriptExpression(n *sitter.Node) string {
	object := n.ChildByFieldName("object")
	index := n.ChildByFieldName("index")
	if object == nil || index == nil {
		return ""
	}
	if object.Type() == "member_expression" {
		innerObj := object.ChildByFieldName("object")
		innerProp := object.ChildByFieldName("property")
		if innerObj != nil && innerProp != nil &&
			innerObj.Content(b.src) == "process" && innerProp.Content(b.src) == "env" &&
			index.Type() == "string" {
			envVar := strings.Trim(index.Content(b.src), `'"`)
			line, col := syntax.Point(n)
			id := b.newID("env", envVar, line)
			b.g.AddNode(Node{ID: id, Kind: NodeSource, Identifier: envVar, Line: line, Column: col,
				Meta: NodeMeta{SourceSubtype: SourceEnvVar, EnvVar: envVar}})
			return id
		}
	}
	objID := b.evalExpr(object)
	if objID == "" {
		return ""
	}
	line, col := syntax.Point(n)
	id := b.newID("prop", index.Content(b.src), line)
	b.g.AddNode(Node{ID: id, Kind: NodeProperty, Identifier: index.Content(b.src), Line: line, Column: col})
	b.g.AddEdge(Edge{From: objID, To: id, Kind: EdgePropertyRead, Label: index.Content(b.src)})
	return id
}

// resolveCallee returns the bare identifier name of a call's callee, or
// (if it is a member expression) the member name and isMember=true, so
// `x.writeFile(...)` matches on member name alone (spec §4.7).
func resolveCallee(callee *sitter.Node, src []byte) (name string, isMember bool, memberName string) {
	if callee == nil {
		return "", false, ""
	}
	switch callee.Type() {
	case "identifier":
		return callee.Content(src), false, ""
	case "member_expression":
		prop := callee.ChildByFieldName("property")
		if prop != nil {
			return "", true, prop.Content(src)
		}
	case "import":
		return "import", false, ""
	}
	return "", false, ""
}

func (b *builder) evalCallExpression(n *sitter.Node) string {
	callee := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")
	name, isMember, memberName := resolveCallee(callee, b.src)

	sinkName := ""
	if _, ok := sinkSubtypeByName[name]; ok {
		sinkName = name
	} else if isMember {
		if _, ok := sinkSubtypeByName[memberName]; ok {
			sinkName = memberName
		}
	}

	var sinkID string
	if sinkName != "" {
		subtype := sinkSubtypeByName[sinkName]
		line, col := syntax.Point(n)
		id := b.newID("sink", sinkName, line)
		b.g.AddNode(Node{ID: id, Kind: NodeSink, Identifier: sinkName, Line: line, Column: col,
			Meta: NodeMeta{SinkSubtype: subtype, FunctionName: sinkName}})
		sinkID = id
		if args != nil {
			argIdx := 0
			for i := 0; i < int(args.ChildCount()); i++ {
				a := args.Child(i)
				if !a.IsNamed() {
					continue
				}
				argID := b.evalExpr(a)
				if argID != "" {
					b.g.AddEdge(Edge{From: argID, To: sinkID, Kind: EdgeFunctionCall, Label: strconv.Itoa(argIdx)})
				}
				argIdx++
			}
		}
	}

	// Network-response source heuristic (spec §9 Open Question): bare
	// fetch(...) or any `.json()`/`.text()` member call is treated as a
	// source. `.json`/`.text` collide with legitimate non-network uses
	// (e.g. config.json()); confidence handling for that ambiguity lives
	// in path reconstruction (see isConservativeNetworkResponse).
	var sourceID string
	if name == "fetch" || (isMember && (memberName == "json" || memberName == "text")) {
		line, col := syntax.Point(n)
		id := b.newID("netresp", memberOrName(name, memberName), line)
		b.g.AddNode(Node{ID: id, Kind: NodeSource, Identifier: memberOrName(name, memberName), Line: line, Column: col,
			Meta: NodeMeta{SourceSubtype: SourceNetworkResponse}})
		sourceID = id
	}

	if sourceID != "" {
		return sourceID
	}
	return sinkID
}

func memberOrName(name, memberName string) string {
	if name != "" {
		return name
	}
	return memberName
}

func (b *builder) evalNewExpression(n *sitter.Node) string {
	constructor := n.ChildByFieldName("constructor")
	if constructor == nil || constructor.Type() != "identifier" || constructor.Content(b.src) != "Function" {
		return ""
	}
	line, col := syntax.Point(n)
	id := b.newID("sink", "Function", line)
	b.g.AddNode(Node{ID: id, Kind: NodeSink, Identifier: "Function", Line: line, Column: col,
		Meta: NodeMeta{SinkSubtype: SinkCodeEvaluation, FunctionName: "Function"}})
	args := n.ChildByFieldName("arguments")
	if args != nil {
		argIdx := 0
		for i := 0; i < int(args.ChildCount()); i++ {
			a := args.Child(i)
			if !a.IsNamed() {
				continue
			}
			argID := b.evalExpr(a)
			if argID != "" {
				b.g.AddEdge(Edge{From: argID, To: id, Kind: EdgeFunctionCall, Label: strconv.Itoa(argIdx)})
			}
			argIdx++
		}
	}
	return id
}

func (b *builder) evalTemplateString(n *sitter.Node) string {
	var exprIDs []string
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "template_substitution" {
			continue
		}
		if expr := firstNamed(child); expr != nil {
			if id := b.evalExpr(expr); id != "" {
				exprIDs = append(exprIDs, id)
			}
		}
	}
	if len(exprIDs) == 0 {
		return ""
	}
	line, col := syntax.Point(n)
	id := b.newID("op", "template-literal", line)
	b.g.AddNode(Node{ID: id, Kind: NodeOperation, Identifier: "template-literal", Line: line, Column: col})
	for _, exprID := range exprIDs {
		b.g.AddEdge(Edge{From: exprID, To: id, Kind: EdgeTemplateLiteral})
	}
	return id
}

func (b *builder) evalObject(n *sitter.Node) string {
	type propEdge struct {
		from, label string
	}
	var edges []propEdge
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.Type() != "pair" {
			continue
		}
		keyNode := child.ChildByFieldName("key")
		valueNode := child.ChildByFieldName("value")
		if valueNode == nil {
			continue
		}
		valID := b.evalExpr(valueNode)
		if valID == "" {
			continue
		}
		label := ""
		if keyNode != nil {
			label = keyNode.Content(b.src)
		}
		edges = append(edges, propEdge{from: valID, label: label})
	}
	if len(edges) == 0 {
		return ""
	}
	line, col := syntax.Point(n)
	id := b.newID("op", "object-literal", line)
	b.g.AddNode(Node{ID: id, Kind: NodeOperation, Identifier: "object-literal", Line: line, Column: col})
	for _, e := range edges {
		b.g.AddEdge(Edge{From: e.from, To: id, Kind: EdgeObjectConstruction, Label: e.label})
	}
	return id
}

func (b *builder) evalAssignment(n *sitter.Node) string {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left == nil || right == nil {
		return ""
	}
	rhsID := b.evalExpr(right)
	if rhsID == "" {
		return ""
	}

	switch left.Type() {
	case "identifier":
		name := left.Content(b.src)
		line, col := syntax.Point(left)
		varID := b.newID("var", name, line)
		b.g.AddNode(Node{ID: varID, Kind: NodeVariable, Identifier: name, Line: line, Column: col})
		b.g.AddEdge(Edge{From: rhsID, To: varID, Kind: EdgeAssignment})
		b.vars[name] = varID
		return varID
	case "member_expression":
		obj := left.ChildByFieldName("object")
		prop := left.ChildByFieldName("property")
		if obj == nil || prop == nil {
			return rhsID
		}
		propName := prop.Content(b.src)
		line, col := syntax.Point(left)
		propID := b.newID("propw", propName, line)
		b.g.AddNode(Node{ID: propID, Kind: NodeProperty, Identifier: propName, Line: line, Column: col})
		b.g.AddEdge(Edge{From: rhsID, To: propID, Kind: EdgePropertyWrite, Label: propName})
		if obj.Type() == "identifier" {
			b.props[obj.Content(b.src)+"."+propName] = propID
		}
		return propID
	default:
		return rhsID
	}
}

func (b *builder) evalBinary(n *sitter.Node) string {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	leftID := b.evalExpr(left)
	rightID := b.evalExpr(right)
	if leftID == "" {
		return rightID
	}
	if rightID == "" {
		return leftID
	}
	line, col := syntax.Point(n)
	id := b.newID("op", "binary-expression", line)
	b.g.AddNode(Node{ID: id, Kind: NodeOperation, Identifier: "binary-expression", Line: line, Column: col})
	b.g.AddEdge(Edge{From: leftID, To: id, Kind: EdgeTemplateLiteral})
	b.g.AddEdge(Edge{From: rightID, To: id, Kind: EdgeTemplateLiteral})
	return id
}
