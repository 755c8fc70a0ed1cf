package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/output"
)

func TestSARIFFormatterProducesOneRunWithResults(t *testing.T) {
	result := model.ScanResult{
		BundleName: "weather-skill",
		Findings: []model.Finding{
			{Severity: model.SeverityCritical, Category: "dangerous-call", Title: "eval usage", File: "index.js", Line: 9, Detail: "calls eval", PatternID: "ev-001"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, output.NewSARIFFormatterWithWriter(&buf).Format(result))

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	runs := decoded["runs"].([]interface{})
	require.Len(t, runs, 1)
	run := runs[0].(map[string]interface{})
	results := run["results"].([]interface{})
	require.Len(t, results, 1)
}
