package bundle_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/bundle"
	"github.com/currentlycurrently/acidtest/model"
)

// fakeFS is an in-memory bundle.FileSystem for tests.
type fakeFS struct {
	files map[string]string
}

func newFakeFS() *fakeFS { return &fakeFS{files: map[string]string{}} }

func (f *fakeFS) put(path, content string) { f.files[filepath.Clean(path)] = content }

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	content, ok := f.files[filepath.Clean(path)]
	if !ok {
		return nil, fmt.Errorf("not found: %s", path)
	}
	return []byte(content), nil
}

func (f *fakeFS) Exists(path string) bool {
	if path == "root" || path == "." {
		return true
	}
	_, ok := f.files[filepath.Clean(path)]
	return ok
}

func (f *fakeFS) ListCodeFiles(root string) ([]string, error) {
	var out []string
	prefix := filepath.Clean(root) + string(filepath.Separator)
	for p := range f.files {
		if strings.HasPrefix(p, prefix) {
			rel := strings.TrimPrefix(p, prefix)
			ext := filepath.Ext(rel)
			if ext == ".js" || ext == ".ts" || ext == ".py" {
				out = append(out, rel)
			}
		}
	}
	return out, nil
}

func TestLoadSkillManifest(t *testing.T) {
	fs := newFakeFS()
	fs.put("root/SKILL.md", "---\nname: my-skill\ndescription: does things\nenv:\n  - API_KEY\nbins:\n  - curl\n---\n# My Skill\n\nDoes things.\n")
	fs.put("root/handler.js", "console.log('hi');")

	b, err := bundle.Load(fs, "root")
	require.NoError(t, err)
	assert.Equal(t, "my-skill", b.Manifest.Name)
	assert.Equal(t, []string{"API_KEY"}, b.Manifest.Env)
	assert.Contains(t, b.Document, "My Skill")
	assert.Equal(t, model.FlavorPrimary, b.Flavor)
	require.Len(t, b.Files, 1)
	assert.Equal(t, model.LanguageBraceFamily, b.Files[0].Language)
}

func TestLoadMCPAlternateManifest(t *testing.T) {
	fs := newFakeFS()
	fs.put("root/mcp.json", `{
		"mcpServers": {
			"weather": {"command": "node", "args": ["server.js"], "env": {"API_KEY": "x"}}
		}
	}`)
	fs.put("root/server.js", "require('child_process');")

	b, err := bundle.Load(fs, "root")
	require.NoError(t, err)
	assert.Equal(t, model.FlavorAlternate, b.Flavor)
	assert.Contains(t, b.Manifest.Bins, "node")
	assert.Contains(t, b.Manifest.Env, "API_KEY")
	assert.Contains(t, b.Manifest.Capabilities, "weather")
}

func TestLoadPackageJSONWithoutMCPKeyIsNotAManifest(t *testing.T) {
	fs := newFakeFS()
	fs.put("root/package.json", `{"name": "some-package", "version": "1.0.0"}`)

	_, err := bundle.Load(fs, "root")
	assert.Error(t, err)
}

func TestLoadPackageJSONWithMCPKey(t *testing.T) {
	fs := newFakeFS()
	fs.put("root/package.json", `{
		"name": "weather-tool",
		"mcp": {
			"weather": {"command": "python3", "args": ["-m", "weather_server"], "env": {"WEATHER_KEY": "x"}}
		}
	}`)

	b, err := bundle.Load(fs, "root")
	require.NoError(t, err)
	assert.Equal(t, model.FlavorAlternate, b.Flavor)
	assert.Contains(t, b.Manifest.Bins, "python3")
	assert.Contains(t, b.Manifest.Bins, "weather_server")
}

func TestLoadMissingPathIsInputError(t *testing.T) {
	fs := newFakeFS()
	_, err := bundle.Load(fs, "")
	assert.Error(t, err)
}

func TestLoadNoManifestIsInputError(t *testing.T) {
	fs := newFakeFS()
	fs.put("root/notes.txt", "nothing here")
	_, err := bundle.Load(fs, "root")
	assert.Error(t, err)
}
