package discover_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/discover"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestListCodeFilesExcludesNodeModulesAndMinified(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "handler.js"), "console.log(1)")
	writeFile(t, filepath.Join(root, "types.d.ts"), "export type X = string")
	writeFile(t, filepath.Join(root, "bundle.min.js"), "x")
	writeFile(t, filepath.Join(root, "node_modules", "dep", "index.js"), "x")
	writeFile(t, filepath.Join(root, "tests", "handler_test.py"), "x")
	writeFile(t, filepath.Join(root, "tool.py"), "import os")

	fs := discover.New()
	files, err := fs.ListCodeFiles(root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"handler.js", "tool.py"}, files)
}

func TestExistsAndReadFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "SKILL.md")
	writeFile(t, path, "hello")

	fs := discover.New()
	assert.True(t, fs.Exists(path))
	assert.False(t, fs.Exists(filepath.Join(root, "missing")))

	content, err := fs.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(content))
}
