package layer

import (
	"regexp"
	"strings"

	"github.com/currentlycurrently/acidtest/model"
)

var networkCapabilityTokens = []string{"browser", "http", "fetch", "network", "web", "curl", "wget"}
var shellCapabilityTokens = []string{"shell", "bash", "exec", "command"}
var filesystemCapabilityTokens = []string{"file", "filesystem", "fs", "read", "write"}

var networkBins = []string{"curl", "wget"}
var shellBins = []string{"bash", "sh", "zsh", "fish", "cmd", "powershell"}

var deceptiveDescriptionWords = []string{"calculator", "timer", "note", "reminder", "formatter", "converter"}

const supplyChainSizeThreshold = 100_000
const minifiedAvgLineLength = 200

var envAccessPatterns = []*regexp.Regexp{
	regexp.MustCompile(`process\.env\.([A-Za-z_][A-Za-z0-9_]*)`),
	regexp.MustCompile(`process\.env\[['"]([A-Za-z_][A-Za-z0-9_]*)['"]\]`),
	regexp.MustCompile(`os\.environ\.get\(['"]([A-Za-z_][A-Za-z0-9_]*)['"]`),
	regexp.MustCompile(`os\.environ\[['"]([A-Za-z_][A-Za-z0-9_]*)['"]\]`),
	regexp.MustCompile(`os\.getenv\(['"]([A-Za-z_][A-Za-z0-9_]*)['"]`),
}

// CrossRef runs Layer 4: reconciliation of layers 1-3's findings against
// the declared manifest (spec §4.6).
func CrossRef(_ Context, bundle *model.Bundle, prior []model.Finding) []model.Finding {
	var findings []model.Finding
	m := bundle.Manifest

	if categoryMentions(prior, "network", "data-exfiltration") &&
		!tokenMatches(m.Capabilities, networkCapabilityTokens) &&
		!binMatches(m.Bins, networkBins) &&
		!bundle.IsAlternate() {
		findings = append(findings, mismatchFinding(model.SeverityCritical, "undeclared network access",
			"Code performs network activity that no declared capability or program accounts for."))
	}

	if categoryMentions(prior, "shell", "command-injection") &&
		!tokenMatches(m.Capabilities, shellCapabilityTokens) &&
		!binMatches(m.Bins, shellBins) {
		findings = append(findings, mismatchFinding(model.SeverityCritical, "undeclared shell execution",
			"Code executes shell commands that no declared capability or program accounts for."))
	}

	if categoryMentions(prior, "filesystem", "path-traversal") &&
		!tokenMatches(m.Capabilities, filesystemCapabilityTokens) &&
		!bundle.IsAlternate() {
		findings = append(findings, mismatchFinding(model.SeverityHigh, "undeclared filesystem access",
			"Code touches the filesystem but no declared capability accounts for it."))
	}

	if !bundle.IsAlternate() {
		if undeclared := undeclaredEnvVars(bundle); len(undeclared) > 0 {
			findings = append(findings, model.Finding{
				Severity: model.SeverityHigh,
				Category: "permission-mismatch",
				Title:    "undeclared environment variable access",
				Detail:   "Code reads environment variables that the manifest does not declare.",
				Evidence: strings.Join(undeclared, ", "),
			})
		}
	}

	if containsAny(strings.ToLower(m.Description), deceptiveDescriptionWords) && categoryMentions(prior, "network", "data-exfiltration") {
		findings = append(findings, model.Finding{
			Severity: model.SeverityHigh,
			Category: "deception-indicator",
			Title:    "benign description, network-capable code",
			Detail:   "The manifest describes a benign utility, but the code performs network activity.",
			Evidence: m.Description,
		})
	}

	totalSize := 0
	for _, f := range bundle.Files {
		totalSize += len(f.Text)
	}
	if totalSize > supplyChainSizeThreshold && looksBenign(m.Description) {
		findings = append(findings, model.Finding{
			Severity: model.SeverityMedium,
			Category: "supply-chain-risk",
			Title:    "unusually large codebase for a benign-sounding tool",
			Detail:   "The bundle's code exceeds 100,000 characters despite a benign-sounding description.",
		})
	}

	for _, f := range bundle.Files {
		if avg := averageLineLength(f.Text); avg > minifiedAvgLineLength {
			findings = append(findings, model.Finding{
				Severity: model.SeverityMedium,
				Category: "supply-chain-risk",
				Title:    "minified or obfuscated file: " + f.Path,
				File:     f.Path,
				Detail:   "This file's average line length exceeds 200 characters, suggesting minification or obfuscation.",
			})
		}
	}

	return findings
}

func mismatchFinding(sev model.Severity, title, detail string) model.Finding {
	return model.Finding{Severity: sev, Category: "permission-mismatch", Title: title, Detail: detail}
}

func categoryMentions(findings []model.Finding, substrings ...string) bool {
	for _, f := range findings {
		for _, s := range substrings {
			if f.Category == s || strings.Contains(f.Category, s) {
				return true
			}
		}
	}
	return false
}

func tokenMatches(tokens []string, keywords []string) bool {
	for _, t := range tokens {
		if containsAny(strings.ToLower(t), keywords) {
			return true
		}
	}
	return false
}

func binMatches(bins []string, targets []string) bool {
	for _, b := range bins {
		if containsExact(strings.ToLower(b), targets) {
			return true
		}
	}
	return false
}

func looksBenign(description string) bool {
	return containsAny(strings.ToLower(description), deceptiveDescriptionWords) || description == ""
}

func undeclaredEnvVars(bundle *model.Bundle) []string {
	declared := make(map[string]bool, len(bundle.Manifest.Env))
	for _, e := range bundle.Manifest.Env {
		declared[e] = true
	}

	seen := map[string]bool{}
	var undeclared []string
	for _, f := range bundle.Files {
		for _, re := range envAccessPatterns {
			for _, m := range re.FindAllStringSubmatch(f.Text, -1) {
				name := m[1]
				if declared[name] || seen[name] {
					continue
				}
				seen[name] = true
				undeclared = append(undeclared, name)
			}
		}
	}
	return undeclared
}

func averageLineLength(text string) float64 {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return 0
	}
	total := 0
	for _, l := range lines {
		total += len(l)
	}
	return float64(total) / float64(len(lines))
}
