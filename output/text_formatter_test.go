package output_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/output"
)

func TestTextFormatterNoFindings(t *testing.T) {
	var buf bytes.Buffer
	result := model.ScanResult{BundleName: "clean-skill", Score: 100, Status: model.StatusPass, Recommendation: "Passed review with no findings."}
	require.NoError(t, output.NewTextFormatterWithWriter(&buf, nil).Format(result))
	assert.Contains(t, buf.String(), "No findings.")
	assert.Contains(t, buf.String(), "Score: 100 (PASS)")
}

func TestTextFormatterGroupsBySeverity(t *testing.T) {
	var buf bytes.Buffer
	result := model.ScanResult{
		BundleName: "risky-skill",
		Score:      40,
		Status:     model.StatusFail,
		Findings: []model.Finding{
			{Severity: model.SeverityMedium, Category: "obfuscation", Title: "high entropy string", Detail: "looks obfuscated"},
			{Severity: model.SeverityCritical, Category: "dangerous-call", Title: "eval usage", File: "worker.js", Line: 4, Detail: "calls eval on dynamic input"},
		},
		Recommendation: "Investigate before trusting this skill.",
	}
	require.NoError(t, output.NewTextFormatterWithWriter(&buf, nil).Format(result))

	out := buf.String()
	critIdx := indexOf(out, "CRITICAL")
	medIdx := indexOf(out, "MEDIUM")
	require.True(t, critIdx >= 0 && medIdx >= 0)
	assert.Less(t, critIdx, medIdx)
	assert.Contains(t, out, "worker.js:4")
}

func TestTextFormatterShowsRemediationWhenEnabled(t *testing.T) {
	var buf bytes.Buffer
	result := model.ScanResult{
		BundleName: "risky-skill",
		Findings: []model.Finding{
			{Severity: model.SeverityHigh, Category: "dangerous-call", Title: "dynamic require", Detail: "requires a computed path",
				Remediation: &model.Remediation{Title: "use a static import", Suggestions: []string{"inline the module name"}}},
		},
	}
	require.NoError(t, output.NewTextFormatterWithWriter(&buf, &output.Options{ShowRemediation: true}).Format(result))
	assert.Contains(t, buf.String(), "fix: use a static import")
	assert.Contains(t, buf.String(), "inline the module name")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
