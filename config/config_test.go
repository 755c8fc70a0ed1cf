package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/model"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadMalformedIsWarningNotError(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".acidtest.json"), []byte("{not json"), 0o644))

	cfg, err := config.Load(root)
	assert.Error(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadValidConfig(t *testing.T) {
	root := t.TempDir()
	body := `{
		"ignore": {"patterns": ["cred-001"], "categories": ["obfuscation"]},
		"thresholds": {"minScore": 50, "failOn": ["FAIL", "DANGER"]},
		"output": {"format": "json", "showRemediation": true, "colors": false}
	}`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".acidtest.json"), []byte(body), 0o644))

	cfg, err := config.Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"cred-001"}, cfg.Ignore.Patterns)
	assert.Equal(t, 50, cfg.Thresholds.MinScore)
	assert.True(t, cfg.Output.ShowRemediation)
}

func TestFilterDropsIgnoredPatternsAndCategories(t *testing.T) {
	cfg := config.Config{Ignore: config.Ignore{Patterns: []string{"cred-001"}, Categories: []string{"obfuscation"}}}
	findings := []model.Finding{
		{PatternID: "cred-001", Category: "credential-request"},
		{Category: "obfuscation"},
		{Category: "dangerous-call"},
	}
	filtered := cfg.Filter(findings)
	require.Len(t, filtered, 1)
	assert.Equal(t, "dangerous-call", filtered[0].Category)
}

func TestFilterNoopWithEmptyIgnoreLists(t *testing.T) {
	findings := []model.Finding{{Category: "x"}}
	assert.Equal(t, findings, config.Default().Filter(findings))
}
