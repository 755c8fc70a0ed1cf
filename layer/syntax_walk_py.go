package layer

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/syntax"
)

// dangerousCallSeverity maps a recognized dotted or bare call name to its
// base severity, following spec §4.5's literal banding: CRITICAL for
// eval/exec/shell=True/os.system/pickle/yaml-unsafe-load, HIGH for
// shutil.rmtree and subprocess without shell=True, MEDIUM otherwise.
// "os.exec*" and "os.spawn*" are matched by prefix in pyCallFinding and
// fall under the same MEDIUM default, since nothing names them CRITICAL.
var dangerousCallSeverity = map[string]model.Severity{
	"eval":               model.SeverityCritical,
	"exec":               model.SeverityCritical,
	"compile":            model.SeverityMedium,
	"__import__":         model.SeverityMedium,
	"os.system":          model.SeverityCritical,
	"os.popen":           model.SeverityMedium,
	"os.remove":          model.SeverityMedium,
	"os.unlink":          model.SeverityMedium,
	"os.rmdir":           model.SeverityMedium,
	"subprocess.run":     model.SeverityHigh,
	"subprocess.call":    model.SeverityHigh,
	"subprocess.Popen":   model.SeverityHigh,
	"subprocess.check_output": model.SeverityHigh,
	"subprocess.check_call":   model.SeverityHigh,
	"pickle.load":       model.SeverityCritical,
	"pickle.loads":      model.SeverityCritical,
	"pickle.Unpickler":  model.SeverityCritical,
	"marshal.load":      model.SeverityMedium,
	"marshal.loads":     model.SeverityMedium,
	"yaml.load":         model.SeverityCritical,
	"shutil.rmtree":     model.SeverityHigh,
	"tempfile.mktemp":   model.SeverityMedium,
	"importlib.import_module": model.SeverityMedium,
}

// dangerousImportSeverity is the per-module severity table for Layer 3's
// dangerous-import check (spec §4.5).
var dangerousImportSeverity = map[string]model.Severity{
	"pickle":     model.SeverityCritical,
	"subprocess": model.SeverityHigh,
	"ctypes":     model.SeverityHigh,
	"cffi":       model.SeverityHigh,
	"marshal":    model.SeverityHigh,
	"shelve":     model.SeverityHigh,
	"socket":     model.SeverityLow,
	"requests":   model.SeverityLow,
	"urllib":     model.SeverityLow,
	"httpx":      model.SeverityLow,
	"importlib":  model.SeverityMedium,
	"os":         model.SeverityMedium,
}

// walkPy visits every node of an indent-family syntax tree and records the
// Layer 3 syntax-walk, dangerous-import, and entropy-sweep findings.
func walkPy(parsed *syntax.Parsed, file string) []model.Finding {
	var findings []model.Finding

	for _, imp := range parsed.Imports {
		root := strings.SplitN(imp.Specifier, ".", 2)[0]
		if sev, ok := dangerousImportSeverity[root]; ok {
			findings = append(findings, model.Finding{
				Severity: sev,
				Category: "dangerous-import",
				Title:    "import of sensitive module: " + root,
				File:     file,
				Line:     imp.Line,
				Detail:   "The module \"" + root + "\" grants capabilities worth auditing the surrounding code for.",
				Evidence: imp.Specifier,
			})
		}
	}

	var urls []string
	var entropyFirst *model.Finding
	entropyCount := 0

	var visit func(n *sitter.Node)
	visit = func(n *sitter.Node) {
		switch n.Type() {
		case "call":
			if f, ok := pyCallFinding(n, parsed.Source, file); ok {
				findings = append(findings, f)
			}
		case "string":
			text := pyStringContent(n, parsed.Source)
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

func pyCallFinding(n *sitter.Node, src []byte, file string) (model.Finding, bool) {
	callee := n.ChildByFieldName("function")
	if callee == nil {
		return model.Finding{}, false
	}
	name := pyCalleeName(callee, src)
	if name == "" {
		return model.Finding{}, false
	}
	line, _ := syntax.Point(n)

	if sev, ok := dangerousCallSeverity[name]; ok {
		detail := "The code calls " + name + "(...)."
		if name == "subprocess.run" || name == "subprocess.call" || name == "subprocess.Popen" ||
			name == "subprocess.check_output" || name == "subprocess.check_call" {
			if pyHasShellTrue(n, src) {
				sev = model.SeverityCritical
				detail += " shell=True is set, enabling full shell interpretation of its arguments."
			}
		}
		if name == "yaml.load" && pyHasSafeLoader(n, src) {
			return model.Finding{}, false
		}
		return model.Finding{
			Severity: sev,
			Category: "dangerous-call",
			Title:    "call to " + name,
			File:     file,
			Line:     line,
			Detail:   detail,
		}, true
	}

	if strings.HasPrefix(name, "os.exec") || strings.HasPrefix(name, "os.spawn") {
		return model.Finding{
			Severity: model.SeverityMedium,
			Category: "dangerous-call",
			Title:    "call to " + name,
			File:     file,
			Line:     line,
			Detail:   "The code calls " + name + "(...), replacing or spawning a process.",
		}, true
	}

	if name == "open" && pyOpenIsWrite(n, src) {
		return model.Finding{
			Severity: model.SeverityMedium,
			Category: "dangerous-call",
			Title:    "open() in a write mode",
			File:     file,
			Line:     line,
			Detail:   "The code opens a file in a write/append mode.",
		}, true
	}

	return model.Finding{}, false
}

func pyCalleeName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "identifier":
		return n.Content(src)
	case "attribute":
		object := n.ChildByFieldName("object")
		attr := n.ChildByFieldName("attribute")
		if object == nil || attr == nil {
			return ""
		}
		if object.Type() != "identifier" {
			return ""
		}
		return object.Content(src) + "." + attr.Content(src)
	}
	return ""
}

func pyHasShellTrue(call *sitter.Node, src []byte) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if c.Type() != "keyword_argument" {
			continue
		}
		name := c.ChildByFieldName("name")
		value := c.ChildByFieldName("value")
		if name != nil && value != nil && name.Content(src) == "shell" && value.Content(src) == "True" {
			return true
		}
	}
	return false
}

func pyHasSafeLoader(call *sitter.Node, src []byte) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		content := c.Content(src)
		if strings.Contains(content, "SafeLoader") || strings.Contains(content, "safe_load") {
			return true
		}
	}
	return false
}

func pyOpenIsWrite(call *sitter.Node, src []byte) bool {
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return false
	}
	idx := 0
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if !c.IsNamed() {
			continue
		}
		if c.Type() == "keyword_argument" {
			name := c.ChildByFieldName("name")
			value := c.ChildByFieldName("value")
			if name != nil && value != nil && name.Content(src) == "mode" {
				return pyModeIsWrite(pyStringContent(value, src))
			}
			continue
		}
		if idx == 1 && c.Type() == "string" {
			return pyModeIsWrite(pyStringContent(c, src))
		}
		idx++
	}
	return false
}

func pyModeIsWrite(mode string) bool {
	return strings.ContainsAny(mode, "wax")
}

// pyStringContent extracts a Python string literal's content, stripping
// quotes and the common b/r/f/u prefixes.
func pyStringContent(n *sitter.Node, src []byte) string {
	s := n.Content(src)
	i := 0
	for i < len(s) && (s[i] == 'b' || s[i] == 'B' || s[i] == 'r' || s[i] == 'R' || s[i] == 'f' || s[i] == 'F' || s[i] == 'u' || s[i] == 'U') {
		i++
	}
	s = s[i:]
	return stripQuotes(s)
}
