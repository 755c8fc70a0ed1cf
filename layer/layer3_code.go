package layer

import (
	"regexp"
	"strings"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/syntax/jsts"
	"github.com/currentlycurrently/acidtest/syntax/pyindent"
)

var importLinePattern = regexp.MustCompile(`^\s*(import\s|export\s.*from\s|.*require\()`)

// Code runs Layer 3: the pattern-and-syntax code scan (spec §4.5). For
// each code file it runs the code-layer regex sweep, a per-language
// syntax walk (which also performs the entropy sweep over string
// literals), and records a parse-error finding for files tree-sitter
// can't parse.
func Code(ctx Context, bundle *model.Bundle, _ []model.Finding) []model.Finding {
	var findings []model.Finding
	codePatterns := codeLayerPatterns(ctx)

	jstsFront := jsts.New()
	pyFront := pyindent.New()

	for _, file := range bundle.Files {
		findings = append(findings, regexSweep(codePatterns, file)...)

		switch file.Language {
		case model.LanguageBraceFamily:
			parsed, err := jstsFront.Parse(file.Path, []byte(file.Text))
			if err != nil {
				findings = append(findings, parseErrorFinding(file.Path))
				continue
			}
			findings = append(findings, walkJSTS(parsed, file.Path)...)
			parsed.Close()
		case model.LanguageIndentFamily:
			parsed, err := pyFront.Parse(file.Path, []byte(file.Text))
			if err != nil {
				findings = append(findings, parseErrorFinding(file.Path))
				continue
			}
			findings = append(findings, walkPy(parsed, file.Path)...)
			parsed.Close()
		}
	}

	return findings
}

// codeLayerPatterns collects every cached pattern targeting the code
// layer, across all categories (credentials, injection, obfuscation,
// sensitive-paths, ...) rather than one fixed category list, since the
// code scan applies to whatever rule bundles happen to be loaded.
func codeLayerPatterns(ctx Context) []model.Pattern {
	var out []model.Pattern
	for _, bundle := range ctx.Patterns.AllCached() {
		for _, p := range bundle.Patterns {
			if p.TargetLayer == model.LayerCode {
				out = append(out, p)
			}
		}
	}
	return out
}

// regexSweep runs every code-layer pattern against one file's text,
// reporting a finding per matching line. sensitive-paths patterns are
// special-cased: a match that falls entirely within a well-formed
// import/require/export-from line is discarded, since path-like
// substrings in legitimate module specifiers aren't path-traversal
// attempts (spec §4.5).
func regexSweep(patterns []model.Pattern, file model.CodeFile) []model.Finding {
	var findings []model.Finding
	lines := strings.Split(file.Text, "\n")

	for _, p := range patterns {
		for lineIdx, lineText := range lines {
			if !Matches(p, lineText) {
				continue
			}
			if strings.Contains(p.Category, "sensitive-path") && importLinePattern.MatchString(lineText) {
				continue
			}
			findings = append(findings, model.Finding{
				Severity:    p.Severity,
				Category:    p.Category,
				Title:       p.Name,
				File:        file.Path,
				Line:        lineIdx + 1,
				Detail:      "Line matches the \"" + p.Name + "\" pattern.",
				Evidence:    strings.TrimSpace(lineText),
				PatternID:   p.ID,
				Remediation: p.Remediation,
			})
		}
	}
	return findings
}

func parseErrorFinding(path string) model.Finding {
	return model.Finding{
		Severity: model.SeverityMedium,
		Category: "parse-error",
		Title:    "file could not be parsed",
		File:     path,
		Detail:   "The syntax front-end could not build a tree for this file; the syntax walk and dataflow engine skip it.",
	}
}
