package layer

import (
	"regexp"
	"strconv"

	"github.com/currentlycurrently/acidtest/model"
)

const documentSizeThreshold = 50_000

var base64RunPattern = regexp.MustCompile(`[A-Za-z0-9+/]{50,}={0,2}`)

// Document runs Layer 2: the markdown document scan (spec §4.4). An
// empty document short-circuits with zero findings.
func Document(ctx Context, bundle *model.Bundle, _ []model.Finding) []model.Finding {
	if bundle.Document == "" {
		return nil
	}

	var findings []model.Finding
	doc := bundle.Document

	for _, category := range []string{"prompt-injection", "sensitive-paths"} {
		for _, p := range ctx.Patterns.Category(category) {
			if p.TargetLayer != model.LayerDocument {
				continue
			}
			if !Matches(p, doc) {
				continue
			}
			findings = append(findings, model.Finding{
				Severity:    p.Severity,
				Category:    p.Category,
				Title:       p.Name,
				Line:        FindLine(p, doc),
				Detail:      "The document matches the \"" + p.Name + "\" pattern.",
				PatternID:   p.ID,
				Remediation: p.Remediation,
			})
		}
	}

	if len(doc) > documentSizeThreshold {
		findings = append(findings, model.Finding{
			Severity: model.SeverityLow,
			Category: "suspicious-size",
			Title:    "document exceeds size threshold",
			Detail:   "The document is larger than the 50,000 character suspicious-size threshold.",
		})
	}

	if matches := base64RunPattern.FindAllString(doc, -1); len(matches) > 0 {
		findings = append(findings, model.Finding{
			Severity: model.SeverityMedium,
			Category: "obfuscation",
			Title:    "base64-like run detected in document",
			Detail:   "The document contains a run of 50 or more base64-alphabet characters, suggesting an encoded payload.",
			Evidence: strconv.Itoa(len(matches)) + " match(es)",
		})
	}

	return findings
}
