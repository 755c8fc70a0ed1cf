package layer

import (
	"strings"

	"github.com/currentlycurrently/acidtest/model"
)

var shellCapabilityKeywords = []string{"shell", "bash", "exec", "command", "sh", "cmd", "powershell"}
var networkCapabilityKeywords = []string{"network", "http", "fetch", "web", "socket", "curl", "wget"}
var filesystemCapabilityKeywords = []string{"file", "filesystem", "fs", "disk", "read", "write"}
var interpreterCapabilityKeywords = []string{"python", "node", "ruby", "perl", "interpreter", "eval"}

// dangerousBinsCritical/High/Medium form the fixed table of well-known
// dangerous programs (spec §4.3's bins check), one list per severity.
var dangerousBinsCritical = []string{"bash", "sh", "zsh", "fish", "cmd", "powershell", "nc", "netcat"}
var dangerousBinsHigh = []string{"curl", "wget", "python", "python3", "node", "ruby", "perl", "docker", "kubectl", "ssh", "scp", "rsync", "telnet"}
var dangerousBinsMedium = []string{"git", "svn", "hg"}

// Manifest runs Layer 1: the manifest audit (spec §4.3).
func Manifest(ctx Context, bundle *model.Bundle, _ []model.Finding) []model.Finding {
	var findings []model.Finding
	m := bundle.Manifest

	if len(m.Capabilities) == 0 && len(m.Env) == 0 && len(m.Bins) == 0 && !bundle.IsAlternate() {
		findings = append(findings, model.Finding{
			Severity: model.SeverityLow,
			Category: "no-permissions",
			Title:    "no declared permissions",
			Detail:   "The manifest declares no capabilities, environment variables, or programs.",
		})
	}

	for _, p := range ctx.Patterns.Category("credentials") {
		if p.TargetLayer != model.LayerManifest {
			continue
		}
		for _, envName := range m.Env {
			if Matches(p, envName) {
				findings = append(findings, model.Finding{
					Severity:    p.Severity,
					Category:    "credential-request",
					Title:       "declared env var matches credential pattern: " + envName,
					Detail:      "The declared environment variable " + envName + " matches a known credential-naming pattern.",
					Evidence:    envName,
					PatternID:   p.ID,
					Remediation: p.Remediation,
				})
			}
		}
	}

	for _, token := range m.Capabilities {
		lower := strings.ToLower(token)
		switch {
		case containsAny(lower, shellCapabilityKeywords):
			findings = append(findings, capabilityFinding(model.SeverityCritical, token, "shell"))
		case containsAny(lower, networkCapabilityKeywords):
			findings = append(findings, capabilityFinding(model.SeverityHigh, token, "network"))
		case containsAny(lower, filesystemCapabilityKeywords):
			findings = append(findings, capabilityFinding(model.SeverityMedium, token, "filesystem"))
		case containsAny(lower, interpreterCapabilityKeywords):
			findings = append(findings, capabilityFinding(model.SeverityMedium, token, "interpreter"))
		}
	}

	for _, bin := range m.Bins {
		lower := strings.ToLower(bin)
		switch {
		case containsExact(lower, dangerousBinsCritical):
			findings = append(findings, binFinding(model.SeverityCritical, bin))
		case containsExact(lower, dangerousBinsHigh):
			findings = append(findings, binFinding(model.SeverityHigh, bin))
		case containsExact(lower, dangerousBinsMedium):
			findings = append(findings, binFinding(model.SeverityMedium, bin))
		}
	}

	return findings
}

func capabilityFinding(sev model.Severity, token, kind string) model.Finding {
	return model.Finding{
		Severity: sev,
		Category: "capability-" + kind,
		Title:    "declared capability requests " + kind + " access: " + token,
		Detail:   "The capability token \"" + token + "\" suggests " + kind + " access.",
		Evidence: token,
	}
}

func binFinding(sev model.Severity, bin string) model.Finding {
	return model.Finding{
		Severity: sev,
		Category: "dangerous-bin",
		Title:    "declared bin is a dangerous program: " + bin,
		Detail:   "The declared program \"" + bin + "\" is on the fixed dangerous-programs table.",
		Evidence: bin,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func containsExact(s string, values []string) bool {
	for _, v := range values {
		if s == v {
			return true
		}
	}
	return false
}
