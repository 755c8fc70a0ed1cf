package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/currentlycurrently/acidtest/model"
)

// JSONFormatter renders a model.ScanResult as the stable JSON report
// described in spec §6.
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a JSON formatter writing to stdout.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{writer: os.Stdout}
}

// NewJSONFormatterWithWriter creates a formatter with a custom writer, for testing.
func NewJSONFormatterWithWriter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

// jsonReport mirrors spec §6's report schema field for field, in order.
type jsonReport struct {
	SchemaVersion  string           `json:"schemaVersion"`
	Tool           string           `json:"tool"`
	Version        string           `json:"version"`
	Skill          jsonSkill        `json:"skill"`
	Score          int              `json:"score"`
	Status         string           `json:"status"`
	Permissions    jsonPermissions  `json:"permissions"`
	Findings       []jsonFinding    `json:"findings"`
	Recommendation string           `json:"recommendation"`
}

type jsonSkill struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type jsonPermissions struct {
	Bins  []string `json:"bins"`
	Env   []string `json:"env"`
	Tools []string `json:"tools"`
}

// jsonFinding carries the §3 Finding fields in the order spec §6
// requires: severity, category, title, file, line, detail, evidence,
// pattern ID, remediation.
type jsonFinding struct {
	Severity    string            `json:"severity"`
	Category    string            `json:"category"`
	Title       string            `json:"title"`
	File        string            `json:"file,omitempty"`
	Line        int               `json:"line,omitempty"`
	Detail      string            `json:"detail"`
	Evidence    string            `json:"evidence,omitempty"`
	PatternID   string            `json:"patternId,omitempty"`
	Remediation *jsonRemediation  `json:"remediation,omitempty"`
}

type jsonRemediation struct {
	Title       string   `json:"title"`
	Suggestions []string `json:"suggestions,omitempty"`
	Autofix     bool     `json:"autofix"`
	Replacement string   `json:"replacement,omitempty"`
}

// Format writes result as the schema described in spec §6.
func (f *JSONFormatter) Format(result model.ScanResult) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(buildReport(result))
}

func buildReport(result model.ScanResult) jsonReport {
	findings := make([]jsonFinding, 0, len(result.Findings))
	for _, fnd := range result.Findings {
		findings = append(findings, buildFinding(fnd))
	}

	return jsonReport{
		SchemaVersion: "1.0.0",
		Tool:          "acidtest",
		Version:       result.ToolVersion,
		Skill: jsonSkill{
			Name: result.BundleName,
			Path: result.BundlePath,
		},
		Score:  result.Score,
		Status: string(result.Status),
		Permissions: jsonPermissions{
			Bins:  result.Permissions.Bins,
			Env:   result.Permissions.Env,
			Tools: result.Permissions.Tools,
		},
		Findings:       findings,
		Recommendation: result.Recommendation,
	}
}

func buildFinding(fnd model.Finding) jsonFinding {
	out := jsonFinding{
		Severity:  string(fnd.Severity),
		Category:  fnd.Category,
		Title:     fnd.Title,
		File:      fnd.File,
		Line:      fnd.Line,
		Detail:    fnd.Detail,
		Evidence:  fnd.Evidence,
		PatternID: fnd.PatternID,
	}
	if fnd.Remediation != nil {
		out.Remediation = &jsonRemediation{
			Title:       fnd.Remediation.Title,
			Suggestions: fnd.Remediation.Suggestions,
			Autofix:     fnd.Remediation.Autofix,
			Replacement: fnd.Remediation.Replacement,
		}
	}
	return out
}
