package layer

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/syntax"
)

var bypassIdentifiers = map[string]bool{
	"global": true, "process": true, "require": true, "module": true, "exports": true,
}

const urlInfoThreshold = 40 // string literals at least this long are worth collecting as URLs

// walkJSTS visits every node of a brace-family syntax tree and records
// the Layer 3 syntax-walk and entropy-sweep findings (spec §4.5).
func walkJSTS(parsed *syntax.Parsed, file string) []model.Finding {
	var findings []model.Finding
	var urls []string
	var entropyFirst *model.Finding
	entropyCount := 0

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "call_expression":
			findings = append(findings, jstsCallFindings(n, parsed.Source, file)...)
		case "new_expression":
			if f, ok := jstsFunctionConstructor(n, parsed.Source, file); ok {
				findings = append(findings, f)
			}
		case "subscript_expression":
			if f, ok := jstsBypassAccess(n, parsed.Source, file); ok {
				findings = append(findings, f)
			}
		case "string":
			text := stripQuotes(n.Content(parsed.Source))
			line, _ := syntax.Point(n)
			if len(text) >= urlInfoThreshold && isURL(text) {
				urls = append(urls, text)
			} else if len(text) >= entropyMinLength && !isURL(text) && !isLegitimateHighEntropy(text) {
				if e := shannonEntropy(text); e > entropyThreshold {
					entropyCount++
					if entropyFirst == nil {
						f := model.Finding{
							Severity: model.SeverityMedium,
							Category: "obfuscation",
							Title:    "high-entropy string literal",
							File:     file,
							Line:     line,
							Detail:   "A string literal has unusually high character entropy, suggesting an encoded or obfuscated payload.",
							Evidence: truncateForEvidence(text),
						}
						entropyFirst = &f
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			visit(n.Child(i))
		}
	}
	visit(parsed.Tree.RootNode())

	if len(urls) > 0 {
		limit := len(urls)
		if limit > 5 {
			limit = 5
		}
		findings = append(findings, model.Finding{
			Severity: model.SeverityInfo,
			Category: "url-literal",
			Title:    "URL literals found in source",
			File:     file,
			Detail:   "The file contains string literals that look like URLs.",
			Evidence: strings.Join(urls[:limit], ", "),
		})
	}

	if entropyFirst != nil {
		entropyFirst.Detail += " (" + strconv.Itoa(entropyCount) + " total offender(s) in this file)"
		findings = append(findings, *entropyFirst)
	}

	return findings
}

func jstsCallFindings(n *sitter.Node, src []byte, file string) []model.Finding {
	callee := n.ChildByFieldName("function")
	if callee == nil || callee.Type() != "identifier" {
		return nil
	}
	name := callee.Content(src)
	line, _ := syntax.Point(n)

	switch name {
	case "eval":
		return []model.Finding{{
			Severity: model.SeverityCritical,
			Category: "eval-usage",
			Title:    "call to eval",
			File:     file,
			Line:     line,
			Detail:   "The code calls eval(), executing a string as code.",
		}}
	case "require":
		return requireCallFindings(n, src, file, line)
	}
	return nil
}

func requireCallFindings(n *sitter.Node, src []byte, file string, line int) []model.Finding {
	args := n.ChildByFieldName("arguments")
	if args == nil {
		return nil
	}
	arg := firstNamedArg(args)
	if arg == nil {
		return nil
	}
	if arg.Type() == "string" {
		return nil
	}

	findings := []model.Finding{{
		Severity: model.SeverityHigh,
		Category: "dynamic-require",
		Title:    "require() with a non-literal argument",
		File:     file,
		Line:     line,
		Detail:   "require() is called with an argument that is not a plain string literal.",
	}}

	if arg.Type() == "binary_expression" {
		op := arg.ChildByFieldName("operator")
		if op == nil {
			for i := 0; i < int(arg.ChildCount()); i++ {
				c := arg.Child(i)
				if !c.IsNamed() && c.Content(src) == "+" {
					op = c
					break
				}
			}
		}
		if op != nil && op.Content(src) == "+" {
			findings = append(findings, model.Finding{
				Severity: model.SeverityHigh,
				Category: "string-concatenation",
				Title:    "require() argument built by string concatenation",
				File:     file,
				Line:     line,
				Detail:   "require()'s argument is built by concatenating strings, typically to dodge static analysis.",
			})
		}
	}
	return findings
}

func jstsFunctionConstructor(n *sitter.Node, src []byte, file string) (model.Finding, bool) {
	constructor := n.ChildByFieldName("constructor")
	if constructor == nil || constructor.Type() != "identifier" || constructor.Content(src) != "Function" {
		return model.Finding{}, false
	}
	line, _ := syntax.Point(n)
	return model.Finding{
		Severity: model.SeverityCritical,
		Category: "function-constructor",
		Title:    "new Function(...) constructs code from a string",
		File:     file,
		Line:     line,
		Detail:   "new Function(...) compiles a string into executable code at runtime.",
	}, true
}

func jstsBypassAccess(n *sitter.Node, src []byte, file string) (model.Finding, bool) {
	object := n.ChildByFieldName("object")
	if object == nil || object.Type() != "identifier" {
		return model.Finding{}, false
	}
	name := object.Content(src)
	if !bypassIdentifiers[name] {
		return model.Finding{}, false
	}
	line, _ := syntax.Point(n)
	return model.Finding{
		Severity: model.SeverityMedium,
		Category: "property-access-bypass",
		Title:    "index access on " + name,
		File:     file,
		Line:     line,
		Detail:   "Index access on \"" + name + "\" can be used to reach properties a static import scan would miss.",
	}, true
}

func firstNamedArg(args *sitter.Node) *sitter.Node {
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if c.IsNamed() {
			return c
		}
	}
	return nil
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'' || first == '`') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func truncateForEvidence(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:60] + "..."
}

