package output

import (
	"encoding/json"
	"io"
	"os"

	sarif "github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/currentlycurrently/acidtest/model"
)

// SARIFFormatter renders a model.ScanResult as SARIF 2.1.0, for
// code-scanning integrations.
type SARIFFormatter struct {
	writer io.Writer
}

// NewSARIFFormatter creates a SARIF formatter writing to stdout.
func NewSARIFFormatter() *SARIFFormatter {
	return &SARIFFormatter{writer: os.Stdout}
}

// NewSARIFFormatterWithWriter creates a formatter with a custom writer, for testing.
func NewSARIFFormatterWithWriter(w io.Writer) *SARIFFormatter {
	return &SARIFFormatter{writer: w}
}

// Format writes result as a single-run SARIF 2.1.0 document.
func (f *SARIFFormatter) Format(result model.ScanResult) error {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return err
	}

	run := sarif.NewRunWithInformationURI("acidtest", "https://github.com/currentlycurrently/acidtest")

	f.buildRules(result.Findings, run)
	for _, fnd := range result.Findings {
		f.buildResult(fnd, run)
	}

	report.AddRun(run)

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (f *SARIFFormatter) buildRules(findings []model.Finding, run *sarif.Run) {
	seen := make(map[string]bool)
	for _, fnd := range findings {
		id := ruleID(fnd)
		if seen[id] {
			continue
		}
		seen[id] = true

		level := severityToLevel(fnd.Severity)
		run.AddRule(id).
			WithName(fnd.Title).
			WithDescription(fnd.Detail).
			WithDefaultConfiguration(sarif.NewReportingConfiguration().WithLevel(level)).
			WithProperties(map[string]interface{}{
				"tags":              []string{"security", fnd.Category},
				"security-severity": severityToScore(fnd.Severity),
			})
	}
}

func (f *SARIFFormatter) buildResult(fnd model.Finding, run *sarif.Run) {
	result := run.CreateResultForRule(ruleID(fnd)).
		WithMessage(sarif.NewTextMessage(fnd.Detail))

	if fnd.File == "" {
		return
	}

	region := sarif.NewRegion()
	if fnd.Line > 0 {
		region.WithStartLine(fnd.Line)
	}

	location := sarif.NewLocation().WithPhysicalLocation(
		sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithUri(fnd.File)).
			WithRegion(region),
	)
	result.AddLocation(location)
}

// ruleID returns the finding's pattern ID when present, otherwise a
// stable fallback derived from its category and title (dataflow
// findings carry no pattern ID).
func ruleID(fnd model.Finding) string {
	if fnd.PatternID != "" {
		return fnd.PatternID
	}
	return fnd.Category + "/" + fnd.Title
}

func severityToLevel(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical, model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

func severityToScore(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "9.0"
	case model.SeverityHigh:
		return "7.0"
	case model.SeverityMedium:
		return "5.0"
	case model.SeverityLow:
		return "3.0"
	default:
		return "1.0"
	}
}
