package layer

import (
	"github.com/currentlycurrently/acidtest/dataflow"
	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/syntax/jsts"
)

// Dataflow runs Layer 5: the taint dataflow engine (spec §4.7), over
// every brace-family code file. A file tree-sitter can't parse is
// silently skipped — Layer 3 already recorded the parse-error finding
// for it, so Layer 5 doesn't report it a second time.
func Dataflow(_ Context, bundle *model.Bundle, _ []model.Finding) []model.Finding {
	var findings []model.Finding
	front := jsts.New()

	for _, file := range bundle.Files {
		if file.Language != model.LanguageBraceFamily {
			continue
		}
		parsed, err := front.Parse(file.Path, []byte(file.Text))
		if err != nil {
			continue
		}
		graph := dataflow.BuildJSTS(parsed)
		findings = append(findings, dataflow.Findings(graph, file.Path)...)
		parsed.Close()
	}

	return findings
}
