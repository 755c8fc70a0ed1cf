// Package scorer turns a bundle's merged findings into the final trust
// verdict: a 0-100 score, a status band, and a recommendation sentence
// (spec §4.8). It is a pure function of its input findings — no I/O, no
// shared state — grounded on model.Severity's weight/downgrade helpers
// and kept as a small explicit package rather than folded into the
// orchestrator, matching the teacher's habit of giving each pipeline
// stage its own package.
package scorer

import (
	"strings"

	"github.com/currentlycurrently/acidtest/model"
)

// maxDeductionsPerKey caps how many findings sharing one dampening key
// (pattern ID, falling back to title) reduce the score (spec §4.8).
const maxDeductionsPerKey = 3

// reweightAllowList is the fixed set of pattern IDs whose severity is
// reduced one notch for alternate-flavor bundles, applied before
// scoring (spec §4.8's domain reweighting).
var reweightAllowList = map[string]bool{
	"ex-001": true, // fetch call
	"cp-006": true, // declared credential env var
	"ob-001": true, // base64 payload
	"ex-006": true, // http URL literal
}

// Reweight returns findings with alternate-flavor domain reweighting
// applied: each finding whose PatternID is on the allow-list has its
// severity downgraded one notch. Findings are copied, never mutated in
// place, since a Finding is immutable once emitted.
func Reweight(findings []model.Finding, isAlternate bool) []model.Finding {
	if !isAlternate {
		return findings
	}
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		if reweightAllowList[f.PatternID] {
			f.Severity = f.Severity.Downgrade()
		}
		out[i] = f
	}
	return out
}

// Score computes the 0-100 trust score: start at 100, subtract each
// finding's severity weight, dampening repeat deductions per pattern
// key to at most maxDeductionsPerKey, floored at 0.
func Score(findings []model.Finding) int {
	deductionsByKey := make(map[string]int)
	score := 100

	for _, f := range findings {
		key := f.DampeningKey()
		if deductionsByKey[key] >= maxDeductionsPerKey {
			continue
		}
		deductionsByKey[key]++
		score -= f.Severity.Weight()
	}

	if score < 0 {
		score = 0
	}
	return score
}

var statusSentence = map[model.StatusBand]string{
	model.StatusDanger: "Danger: multiple serious security findings. Do not install without a full manual review.",
	model.StatusFail:   "Failed review: security findings require remediation before this tool should be trusted.",
	model.StatusWarn:   "Passed with warnings: review the findings below before installing.",
	model.StatusPass:   "Passed review.",
}

// Recommendation evaluates spec §4.8's recommendation rules, in order,
// against the (already reweighted) findings and the final score.
func Recommendation(findings []model.Finding, score int) string {
	for _, f := range findings {
		if f.Severity == model.SeverityCritical && f.Category == "permission-mismatch" {
			return "Do not install. Undeclared data exfiltration detected."
		}
		if strings.Contains(f.Category, "exfiltration") || strings.Contains(strings.ToLower(f.Title), "exfiltrate") {
			return "Do not install. Undeclared data exfiltration detected."
		}
	}

	for _, f := range findings {
		if f.Severity == model.SeverityCritical && f.Category == "prompt-injection" {
			return "Do not install. Prompt injection attempt detected."
		}
	}

	status := model.StatusForScore(score)
	if status == model.StatusPass && len(findings) == 0 {
		return "Passed review with no findings."
	}
	return statusSentence[status]
}

// Verdict runs the full scoring pipeline for one bundle's findings:
// domain reweighting, scoring, status banding, and recommendation.
// findings should already have the config filter's ignore lists
// applied; Verdict performs no filtering of its own.
func Verdict(findings []model.Finding, isAlternate bool) (reweighted []model.Finding, score int, status model.StatusBand, recommendation string) {
	reweighted = Reweight(findings, isAlternate)
	score = Score(reweighted)
	status = model.StatusForScore(score)
	recommendation = Recommendation(reweighted, score)
	return
}
