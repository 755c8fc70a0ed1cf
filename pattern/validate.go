package pattern

import (
	"fmt"
	"regexp"

	"github.com/currentlycurrently/acidtest/model"
)

// ValidationError is one structural or semantic failure found while
// validating a pattern bundle, reported with a JSON-path so a standalone
// validator run can point at the exact offending field (spec §4.1).
type ValidationError struct {
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// decodeAndValidate applies the four mandatory checks from spec §4.1:
//  1. structural check (required fields, correct type/range/enum)
//  2. pattern IDs unique within the bundle
//  3. regex values compile with their flags
//  4. remediation, when present, has a non-empty title and >=1 suggestion
//
// Any structural failure invalidates the whole bundle (the caller drops
// every pattern in it, per spec "any structural failure makes the whole
// bundle invalid").
func decodeAndValidate(rb rawBundle) ([]model.Pattern, []ValidationError) {
	var errs []ValidationError
	seen := make(map[string]bool, len(rb.Patterns))
	out := make([]model.Pattern, 0, len(rb.Patterns))

	if rb.Category == "" {
		errs = append(errs, ValidationError{Path: "$.category", Message: "required field missing"})
	}

	for i, rp := range rb.Patterns {
		path := fmt.Sprintf("$.patterns[%d]", i)

		if rp.ID == "" {
			errs = append(errs, ValidationError{Path: path + ".id", Message: "required field missing"})
			continue
		}
		if !isKebabCase(rp.ID) {
			errs = append(errs, ValidationError{Path: path + ".id", Message: "must be kebab-case"})
		}
		if seen[rp.ID] {
			errs = append(errs, ValidationError{Path: path + ".id", Message: fmt.Sprintf("duplicate pattern id %q", rp.ID)})
			continue
		}
		seen[rp.ID] = true

		sev := model.Severity(rp.Severity)
		if !sev.Valid() {
			errs = append(errs, ValidationError{Path: path + ".severity", Message: fmt.Sprintf("invalid severity %q", rp.Severity)})
		}

		layer := model.Layer(rp.TargetLayer)
		if layer != model.LayerManifest && layer != model.LayerDocument && layer != model.LayerCode {
			errs = append(errs, ValidationError{Path: path + ".targetLayer", Message: fmt.Sprintf("invalid target layer %q", rp.TargetLayer)})
		}

		matchType := model.MatchType(rp.Match.Type)
		switch matchType {
		case model.MatchRegex:
			if _, err := compileRegex(rp.Match.Value, rp.Match.RegexFlags); err != nil {
				errs = append(errs, ValidationError{Path: path + ".match.value", Message: fmt.Sprintf("regex does not compile: %v", err)})
			}
		case model.MatchSubstring, model.MatchSyntaxNode:
			// no further structural constraint
		default:
			errs = append(errs, ValidationError{Path: path + ".match.type", Message: fmt.Sprintf("invalid match type %q", rp.Match.Type)})
		}

		var remediation *model.Remediation
		if rp.Remediation != nil {
			if rp.Remediation.Title == "" {
				errs = append(errs, ValidationError{Path: path + ".remediation.title", Message: "required when remediation present"})
			}
			if len(rp.Remediation.Suggestions) == 0 {
				errs = append(errs, ValidationError{Path: path + ".remediation.suggestions", Message: "must have at least one suggestion"})
			}
			remediation = &model.Remediation{
				Title:       rp.Remediation.Title,
				Suggestions: rp.Remediation.Suggestions,
				Autofix:     rp.Remediation.Autofix,
				Replacement: rp.Remediation.Replacement,
			}
		}

		category := rp.Category
		if category == "" {
			category = rb.Category
		}

		out = append(out, model.Pattern{
			ID:          rp.ID,
			Name:        rp.Name,
			Description: rp.Description,
			Severity:    sev,
			Match: model.MatchSpec{
				Type:       matchType,
				Value:      rp.Match.Value,
				RegexFlags: rp.Match.RegexFlags,
			},
			TargetLayer: layer,
			Category:    category,
			Remediation: remediation,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

func isKebabCase(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '-' && i != 0 && i != len(s)-1:
		default:
			return false
		}
	}
	return true
}

// compileRegex compiles value honoring the simple flag vocabulary used by
// pattern files: "i" for case-insensitive, "m" for multiline.
func compileRegex(value, flags string) (*regexp.Regexp, error) {
	prefix := ""
	for _, f := range flags {
		switch f {
		case 'i':
			prefix += "i"
		case 'm':
			prefix += "m"
		case 's':
			prefix += "s"
		}
	}
	if prefix != "" {
		value = "(?" + prefix + ")" + value
	}
	return regexp.Compile(value)
}

// CompiledMatcher exposes a compiled regexp for a pattern whose match
// type is MatchRegex. It returns false for any other match type, and
// also when the regex fails to compile (which decodeAndValidate rules
// out for loaded patterns); it never panics.
func CompiledMatcher(p model.Pattern) (*regexp.Regexp, bool) {
	if p.Match.Type != model.MatchRegex {
		return nil, false
	}
	re, err := compileRegex(p.Match.Value, p.Match.RegexFlags)
	if err != nil {
		return nil, false
	}
	return re, true
}
