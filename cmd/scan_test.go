package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/output"
)

func TestRenderResultJSON(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "result-*.json")
	require.NoError(t, err)
	defer f.Close()

	cfg := config.Config{Output: config.Output{Format: "json"}}
	result := model.ScanResult{BundleName: "x", Status: model.StatusPass, Score: 100}
	require.NoError(t, renderResult(f, result, cfg))

	var buf bytes.Buffer
	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	_, err = buf.ReadFrom(f)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "acidtest", decoded["tool"])
}

func TestRenderResultTextIsDefault(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "result-*.txt")
	require.NoError(t, err)
	defer f.Close()

	cfg := config.Config{}
	result := model.ScanResult{BundleName: "x", Status: model.StatusPass, Score: 100}
	require.NoError(t, renderResult(f, result, cfg))

	_, err = f.Seek(0, 0)
	require.NoError(t, err)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(f)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Score: 100 (PASS)")
}

func TestLoggerVerbosityFlags(t *testing.T) {
	debugFlag, verboseFlag = true, false
	assert.Equal(t, 2, int(loggerVerbosity()))

	debugFlag, verboseFlag = false, true
	assert.Equal(t, 1, int(loggerVerbosity()))

	debugFlag, verboseFlag = false, false
	assert.Equal(t, 0, int(loggerVerbosity()))
}

func TestRunScanOnceCleanBundlePasses(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "SKILL.md"),
		[]byte("---\nname: clean-skill\ndescription: does nothing risky\n---\n# Clean\n"), 0o644))

	out := filepath.Join(root, "out.json")
	cmd := &cobra.Command{}
	cmd.Flags().StringP("bundle", "b", "", "")
	cmd.Flags().String("patterns", "", "")
	cmd.Flags().StringP("output", "o", "json", "")
	cmd.Flags().StringP("output-file", "f", out, "")
	cmd.Flags().Bool("show-remediation", false, "")
	cmd.Flags().Bool("no-color", false, "")
	cmd.Flags().Int("min-score", 0, "")

	exitCode, err := runScanOnce(cmd, root)
	require.NoError(t, err)
	assert.Equal(t, output.ExitOK, exitCode)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PASS", decoded["status"])
}
