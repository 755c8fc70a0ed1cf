package scorer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/scorer"
)

func TestScoreDampensRepeatPatternID(t *testing.T) {
	var findings []model.Finding
	for i := 0; i < 10; i++ {
		findings = append(findings, model.Finding{Severity: model.SeverityCritical, PatternID: "cred-001"})
	}
	score := scorer.Score(findings)
	assert.Equal(t, 25, score)
	assert.Equal(t, model.StatusFail, model.StatusForScore(score))
}

func TestScoreRepeatAcrossPatternIDs(t *testing.T) {
	findings := []model.Finding{
		{Severity: model.SeverityCritical, PatternID: "a"},
		{Severity: model.SeverityCritical, PatternID: "a"},
		{Severity: model.SeverityHigh, PatternID: "b"},
	}
	assert.Equal(t, 35, scorer.Score(findings))
}

func TestScoreFloorsAtZero(t *testing.T) {
	var findings []model.Finding
	for i := 0; i < 20; i++ {
		findings = append(findings, model.Finding{Severity: model.SeverityCritical, PatternID: "x"})
	}
	assert.GreaterOrEqual(t, scorer.Score(findings), 0)
}

func TestReweightAlternateFlavor(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityMedium, PatternID: "ex-001"}}
	reweighted := scorer.Reweight(findings, true)
	assert.Equal(t, model.SeverityLow, reweighted[0].Severity)
	assert.Equal(t, 97, scorer.Score(reweighted))
}

func TestReweightNotAppliedWhenNotAlternate(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityMedium, PatternID: "ex-001"}}
	reweighted := scorer.Reweight(findings, false)
	assert.Equal(t, model.SeverityMedium, reweighted[0].Severity)
}

func TestReweightIgnoresPatternIDsNotOnAllowList(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityMedium, PatternID: "unrelated-001"}}
	reweighted := scorer.Reweight(findings, true)
	assert.Equal(t, model.SeverityMedium, reweighted[0].Severity)
}

func TestRecommendationExfiltration(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityCritical, Category: "permission-mismatch"}}
	rec := scorer.Recommendation(findings, 50)
	assert.Equal(t, "Do not install. Undeclared data exfiltration detected.", rec)
}

func TestRecommendationPromptInjection(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityCritical, Category: "prompt-injection"}}
	rec := scorer.Recommendation(findings, 60)
	assert.Equal(t, "Do not install. Prompt injection attempt detected.", rec)
}

func TestRecommendationPassNoFindings(t *testing.T) {
	rec := scorer.Recommendation(nil, 100)
	assert.Equal(t, "Passed review with no findings.", rec)
}

func TestVerdictEndToEnd(t *testing.T) {
	findings := []model.Finding{{Severity: model.SeverityMedium, PatternID: "ex-001"}}
	reweighted, score, status, rec := scorer.Verdict(findings, true)
	assert.Equal(t, model.SeverityLow, reweighted[0].Severity)
	assert.Equal(t, 97, score)
	assert.Equal(t, model.StatusPass, status)
	assert.NotEmpty(t, rec)
}
