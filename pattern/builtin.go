package pattern

import "github.com/currentlycurrently/acidtest/model"

// Builtin returns the in-memory default rule set the orchestrator falls
// back to when no on-disk pattern directory is configured. Real
// deployments ship JSON bundles (see Store); this mirrors their shape so
// unit tests and first-run usage don't depend on a filesystem layout.
func Builtin() []model.CategoryBundle {
	return []model.CategoryBundle{
		{Category: "credentials", Patterns: []model.Pattern{
			{ID: "cred-001", Name: "API key env var", Severity: model.SeverityHigh,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `(?i)(api[_-]?key|secret|token|password|credential)`},
				TargetLayer: model.LayerManifest, Category: "credential-request"},
			{ID: "cp-006", Name: "declared credential env var", Severity: model.SeverityMedium,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `(?i)(key|secret|token|password)`},
				TargetLayer: model.LayerManifest, Category: "credential-request"},
		}},
		{Category: "prompt-injection", Patterns: []model.Pattern{
			{ID: "pi-001", Name: "ignore previous instructions", Severity: model.SeverityCritical,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `(?i)ignore (all )?(previous|above) instructions`},
				TargetLayer: model.LayerDocument, Category: "prompt-injection"},
			{ID: "pi-002", Name: "system prompt override", Severity: model.SeverityHigh,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `(?i)you are now (in )?(developer|dan|jailbreak) mode`},
				TargetLayer: model.LayerDocument, Category: "prompt-injection"},
		}},
		{Category: "sensitive-paths", Patterns: []model.Pattern{
			{ID: "sp-001", Name: "ssh key path", Severity: model.SeverityHigh,
				Match: model.MatchSpec{Type: model.MatchSubstring, Value: ".ssh/id_rsa"},
				TargetLayer: model.LayerDocument, Category: "sensitive-path"},
			{ID: "sp-002", Name: "path traversal literal", Severity: model.SeverityMedium,
				Match: model.MatchSpec{Type: model.MatchSubstring, Value: "../../../"},
				TargetLayer: model.LayerCode, Category: "sensitive-path"},
			{ID: "sp-003", Name: "aws credentials path", Severity: model.SeverityHigh,
				Match: model.MatchSpec{Type: model.MatchSubstring, Value: ".aws/credentials"},
				TargetLayer: model.LayerDocument, Category: "sensitive-path"},
		}},
		{Category: "obfuscation", Patterns: []model.Pattern{
			{ID: "ob-001", Name: "base64 payload", Severity: model.SeverityMedium,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `[A-Za-z0-9+/]{50,}={0,2}`},
				TargetLayer: model.LayerDocument, Category: "obfuscation"},
		}},
		{Category: "exfiltration", Patterns: []model.Pattern{
			{ID: "ex-001", Name: "fetch call", Severity: model.SeverityMedium,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `\bfetch\s*\(`},
				TargetLayer: model.LayerCode, Category: "network"},
			{ID: "ex-006", Name: "http URL literal", Severity: model.SeverityLow,
				Match: model.MatchSpec{Type: model.MatchRegex, Value: `https?://[^\s'"]+`},
				TargetLayer: model.LayerCode, Category: "network"},
		}},
	}
}
