package output

import (
	"fmt"
	"io"
	"os"

	"github.com/currentlycurrently/acidtest/model"
)

var severityOrder = []model.Severity{
	model.SeverityCritical,
	model.SeverityHigh,
	model.SeverityMedium,
	model.SeverityLow,
	model.SeverityInfo,
}

// TextFormatter renders a model.ScanResult as human-readable text.
type TextFormatter struct {
	writer  io.Writer
	options *Options
}

// NewTextFormatter creates a text formatter writing to stdout.
func NewTextFormatter(opts *Options) *TextFormatter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextFormatter{writer: os.Stdout, options: opts}
}

// NewTextFormatterWithWriter creates a formatter with a custom writer, for testing.
func NewTextFormatterWithWriter(w io.Writer, opts *Options) *TextFormatter {
	tf := NewTextFormatter(opts)
	tf.writer = w
	return tf
}

// Format writes result as formatted text.
func (f *TextFormatter) Format(result model.ScanResult) error {
	f.writeHeader(result)

	if len(result.Findings) == 0 {
		fmt.Fprintln(f.writer, "No findings.")
	} else {
		f.writeFindings(result.Findings)
	}

	fmt.Fprintln(f.writer)
	fmt.Fprintf(f.writer, "Score: %d (%s)\n", result.Score, result.Status)
	fmt.Fprintln(f.writer, result.Recommendation)
	return nil
}

func (f *TextFormatter) writeHeader(result model.ScanResult) {
	fmt.Fprintf(f.writer, "acidtest scan: %s\n", result.BundleName)
	fmt.Fprintln(f.writer)
}

func (f *TextFormatter) writeFindings(findings []model.Finding) {
	grouped := groupBySeverity(findings)
	for _, sev := range severityOrder {
		group := grouped[sev]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(f.writer, "%s\n", sev)
		for _, fnd := range group {
			f.writeFinding(fnd)
		}
		fmt.Fprintln(f.writer)
	}
}

func (f *TextFormatter) writeFinding(fnd model.Finding) {
	loc := fnd.Category
	if fnd.File != "" {
		loc = fnd.File
		if fnd.Line > 0 {
			loc = fmt.Sprintf("%s:%d", fnd.File, fnd.Line)
		}
	}
	fmt.Fprintf(f.writer, "  [%s] %s (%s)\n", fnd.Category, fnd.Title, loc)
	fmt.Fprintf(f.writer, "    %s\n", fnd.Detail)
	if fnd.Evidence != "" {
		fmt.Fprintf(f.writer, "    evidence: %s\n", fnd.Evidence)
	}
	if f.options.ShowRemediation && fnd.Remediation != nil {
		fmt.Fprintf(f.writer, "    fix: %s\n", fnd.Remediation.Title)
		for _, s := range fnd.Remediation.Suggestions {
			fmt.Fprintf(f.writer, "      - %s\n", s)
		}
	}
}

func groupBySeverity(findings []model.Finding) map[model.Severity][]model.Finding {
	grouped := make(map[model.Severity][]model.Finding)
	for _, fnd := range findings {
		grouped[fnd.Severity] = append(grouped[fnd.Severity], fnd)
	}
	return grouped
}
