package pattern

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBundle(t *testing.T, dir, category, json string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, category+".json"), []byte(json), 0o644))
}

func TestStore_CategoryLoadsAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "credentials", `{
		"category": "credentials",
		"patterns": [
			{"id": "cred-001", "name": "API key", "severity": "HIGH",
			 "match": {"type": "regex", "value": "(?i)api[_-]?key"},
			 "targetLayer": "manifest", "category": "credential-request"}
		]
	}`)

	store, err := NewStore(dir, 4)
	require.NoError(t, err)

	patterns := store.Category("credentials")
	require.Len(t, patterns, 1)
	assert.Equal(t, "cred-001", patterns[0].ID)
	assert.Empty(t, store.Warnings())

	// Second call hits the cache; same slice contents.
	again := store.Category("credentials")
	assert.Equal(t, patterns, again)
}

func TestStore_MalformedBundleIsWarningNotError(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "broken", `{
		"category": "broken",
		"patterns": [
			{"id": "dup", "severity": "HIGH", "match": {"type": "regex", "value": "x"}, "targetLayer": "code"},
			{"id": "dup", "severity": "HIGH", "match": {"type": "regex", "value": "x"}, "targetLayer": "code"}
		]
	}`)

	store, err := NewStore(dir, 4)
	require.NoError(t, err)

	patterns := store.Category("broken")
	assert.Nil(t, patterns)
	warnings := store.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "broken")
}

func TestStore_LoadAllSkipsInvalidCategories(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "good", `{"category":"good","patterns":[
		{"id":"g-1","severity":"LOW","match":{"type":"substring","value":"x"},"targetLayer":"document"}
	]}`)
	writeBundle(t, dir, "bad", `not json`)

	store, err := NewStore(dir, 4)
	require.NoError(t, err)

	bundles := store.LoadAll()
	require.Len(t, bundles, 1)
	assert.Equal(t, "good", bundles[0].Category)
}

func TestValidatePath_ReportsJSONPathErrors(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "invalid", `{"category":"invalid","patterns":[
		{"id":"Not Kebab","severity":"BOGUS","match":{"type":"regex","value":"("},"targetLayer":"code"}
	]}`)

	reports, err := ValidatePath(dir)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.True(t, AnyFailed(reports))

	var paths []string
	for _, e := range reports[0].Errors {
		paths = append(paths, e.Path)
	}
	assert.Contains(t, paths, "$.patterns[0].id")
	assert.Contains(t, paths, "$.patterns[0].severity")
	assert.Contains(t, paths, "$.patterns[0].match.value")
}

func TestIsKebabCase(t *testing.T) {
	assert.True(t, isKebabCase("cred-001"))
	assert.True(t, isKebabCase("a"))
	assert.False(t, isKebabCase(""))
	assert.False(t, isKebabCase("-leading"))
	assert.False(t, isKebabCase("trailing-"))
	assert.False(t, isKebabCase("Has-Upper"))
	assert.False(t, isKebabCase("has_underscore"))
}
