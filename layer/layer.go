// Package layer implements the five ordered finding scanners (spec §2's
// "Layer Scanners", §4.3-§4.7): manifest audit, document scan, code scan,
// cross-reference reconciliation, and the dataflow engine wrapper. Each
// layer has the same shape — a bundle (plus, for layer 4, the prior
// layers' findings) in, a findings sequence out — grounded on the
// teacher's per-analyzer functions in its own finding-producing packages,
// generalized here into one uniform Layer signature the orchestrator
// drives in sequence.
package layer

import (
	"strings"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/pattern"
)

// Context carries the read-only state every layer needs: the pattern
// store (immutable after load, freely shared — spec §5).
type Context struct {
	Patterns *pattern.Store
}

// Func is the common layer shape: `(Bundle, priorFindings?) -> Findings`.
// Layers 1, 2, 3, and 5 ignore prior; layer 4 is the only consumer.
type Func func(ctx Context, bundle *model.Bundle, prior []model.Finding) []model.Finding

// Matches reports whether a pattern's match specification fires against
// text.
func Matches(p model.Pattern, text string) bool {
	switch p.Match.Type {
	case model.MatchSubstring:
		return p.Match.Value != "" && strings.Contains(text, p.Match.Value)
	case model.MatchRegex:
		re, ok := pattern.CompiledMatcher(p)
		return ok && re.MatchString(text)
	default:
		return false
	}
}

// FindLine returns the matching pattern's location within text as a
// 1-indexed line number, finding the first match per §4.1/§4.4's
// "recording the first-match line number".
func FindLine(p model.Pattern, text string) int {
	idx := -1
	switch p.Match.Type {
	case model.MatchSubstring:
		idx = strings.Index(text, p.Match.Value)
	case model.MatchRegex:
		if re, ok := pattern.CompiledMatcher(p); ok {
			loc := re.FindStringIndex(text)
			if loc != nil {
				idx = loc[0]
			}
		}
	}
	if idx < 0 {
		return 0
	}
	return strings.Count(text[:idx], "\n") + 1
}
