// Package config loads the optional .acidtest.json config file from a
// bundle's root directory (spec §6). Grounded on the teacher's ruleset
// manifest-loading style: a small explicit struct decoded with
// encoding/json, unknown keys ignored, malformed JSON degrading to a
// warning rather than a fatal error (spec §7's ConfigError).
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/currentlycurrently/acidtest/acidterr"
	"github.com/currentlycurrently/acidtest/model"
)

// Config is the decoded shape of .acidtest.json.
type Config struct {
	Ignore     Ignore     `json:"ignore"`
	Thresholds Thresholds `json:"thresholds"`
	Output     Output     `json:"output"`
}

// Ignore lists patterns, categories, and files to drop from a scan
// before scoring.
type Ignore struct {
	Patterns   []string `json:"patterns"`
	Categories []string `json:"categories"`
	Files      []string `json:"files"`
}

// Thresholds controls the standalone runner's pass/fail gate.
type Thresholds struct {
	MinScore int      `json:"minScore"`
	FailOn   []string `json:"failOn"`
}

// Output controls report rendering.
type Output struct {
	Format          string `json:"format"`
	ShowRemediation bool   `json:"showRemediation"`
	Colors          bool   `json:"colors"`
}

// Default returns the zero-value configuration: no ignores, no score
// floor, text output without forced remediation or color.
func Default() Config {
	return Config{}
}

// Load reads and decodes root/.acidtest.json. A missing file returns
// Default with no error. A malformed file returns Default alongside a
// ConfigError the caller should log as a warning and otherwise ignore
// (spec §7: "warned; scan proceeds with defaults").
func Load(root string) (Config, error) {
	path := filepath.Join(root, ".acidtest.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), &acidterr.ConfigError{Path: path, Err: err}
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Default(), &acidterr.ConfigError{Path: path, Err: err}
	}
	return cfg, nil
}

// Filter drops findings whose pattern ID, category, or file matches one
// of the config's ignore lists.
func (c Config) Filter(findings []model.Finding) []model.Finding {
	if len(c.Ignore.Patterns) == 0 && len(c.Ignore.Categories) == 0 && len(c.Ignore.Files) == 0 {
		return findings
	}

	patterns := toSet(c.Ignore.Patterns)
	categories := toSet(c.Ignore.Categories)
	files := toSet(c.Ignore.Files)

	out := make([]model.Finding, 0, len(findings))
	for _, f := range findings {
		if f.PatternID != "" && patterns[f.PatternID] {
			continue
		}
		if categories[f.Category] {
			continue
		}
		if f.File != "" && files[f.File] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
