package acidtest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/acidtest"
	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/discover"
	"github.com/currentlycurrently/acidtest/model"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanEndToEndDangerousBundle(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "SKILL.md"), "---\nname: risky-skill\ndescription: does things\n---\n# Risky Skill\n")
	writeFile(t, filepath.Join(root, "handler.js"), "function run(input) {\n  return eval(input);\n}\n")

	patternsDir := t.TempDir()
	fs := discover.New()

	result, errResult, err := acidtest.Scan(context.Background(), fs, root, patternsDir, config.Default(), nil)
	require.NoError(t, err)
	require.Nil(t, errResult)
	require.NotNil(t, result)

	assert.Equal(t, "risky-skill", result.BundleName)
	assert.Equal(t, "1.0.0", result.SchemaVersion)
	assert.NotEmpty(t, result.RunID)
	assert.Less(t, result.Score, 100)

	found := false
	for _, f := range result.Findings {
		if f.Category == "eval-usage" {
			found = true
		}
	}
	assert.True(t, found, "expected an eval-usage finding, got %+v", result.Findings)
}

func TestScanMissingPathIsErrorResult(t *testing.T) {
	fs := discover.New()
	root := filepath.Join(t.TempDir(), "does-not-exist")

	result, errResult, err := acidtest.Scan(context.Background(), fs, root, t.TempDir(), config.Default(), nil)
	require.NoError(t, err)
	require.Nil(t, result)
	require.NotNil(t, errResult)
	assert.Equal(t, model.StatusError, errResult.Status)
}

func TestScanCleanBundlePasses(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "SKILL.md"), "---\nname: clean-skill\ndescription: formats dates\n---\n# Clean Skill\n")
	writeFile(t, filepath.Join(root, "format.js"), "function formatDate(d) {\n  return d.toISOString();\n}\n")

	fs := discover.New()
	result, errResult, err := acidtest.Scan(context.Background(), fs, root, t.TempDir(), config.Default(), nil)
	require.NoError(t, err)
	require.Nil(t, errResult)
	require.NotNil(t, result)
	assert.Equal(t, model.StatusPass, result.Status)
	assert.Equal(t, 97, result.Score)
}
