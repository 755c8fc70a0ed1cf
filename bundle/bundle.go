// Package bundle loads one AI-agent bundle from disk into the model.Bundle
// shape: the primary SKILL.md manifest or one of four alternate-flavor
// manifests, plus its code files (spec §6). Grounded on the teacher's
// ruleset manifest loading style — small explicit structs decoded with
// encoding/json/yaml.v3, not a generic config framework — adapted here
// to the bundle-discovery contract SPEC_FULL.md calls for: directory
// traversal itself is injected via FileSystem so this package never
// walks a filesystem directly (that lives in the peripheral discover
// package).
package bundle

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/currentlycurrently/acidtest/acidterr"
	"github.com/currentlycurrently/acidtest/model"
)

// FileSystem is the narrow filesystem contract bundle.Load needs. The
// concrete implementation (walking directories, applying the
// node_modules/dist/*.d.ts/*.min.* exclusions) lives in package
// discover; bundle only consumes the interface.
type FileSystem interface {
	// ReadFile returns path's contents, or an error if it can't be read.
	ReadFile(path string) ([]byte, error)
	// Exists reports whether path exists (file or directory).
	Exists(path string) bool
	// ListCodeFiles returns the relative paths of every in-scope code
	// file under root (spec §6's glob-and-exclude rule).
	ListCodeFiles(root string) ([]string, error)
}

var alternateManifestFiles = []string{"mcp.json", "server.json", "package.json", "claude_desktop_config.json"}

// Load identifies and loads the bundle rooted at root: the primary
// SKILL.md manifest if present, otherwise the first matching
// alternate-flavor manifest, otherwise an InputError (spec §7).
func Load(fs FileSystem, root string) (*model.Bundle, error) {
	if !fs.Exists(root) {
		return nil, &acidterr.InputError{Path: root, Reason: "path does not exist"}
	}

	skillPath := filepath.Join(root, "SKILL.md")
	if fs.Exists(skillPath) {
		raw, err := fs.ReadFile(skillPath)
		if err != nil {
			return nil, &acidterr.InputError{Path: skillPath, Reason: err.Error()}
		}
		manifest, document, err := parseSkillManifest(raw)
		if err != nil {
			return nil, &acidterr.InputError{Path: skillPath, Reason: err.Error()}
		}
		return finishLoad(fs, root, manifest, document, model.FlavorPrimary)
	}

	for _, name := range alternateManifestFiles {
		path := filepath.Join(root, name)
		if !fs.Exists(path) {
			continue
		}
		raw, err := fs.ReadFile(path)
		if err != nil {
			continue
		}
		manifest, ok, err := parseAlternateManifest(name, raw)
		if err != nil {
			return nil, &acidterr.InputError{Path: path, Reason: err.Error()}
		}
		if !ok {
			continue
		}
		return finishLoad(fs, root, manifest, "", model.FlavorAlternate)
	}

	return nil, &acidterr.InputError{Path: root, Reason: "no SKILL.md and no recognized alternate manifest"}
}

func finishLoad(fs FileSystem, root string, manifest model.Manifest, document string, flavor model.ManifestFlavor) (*model.Bundle, error) {
	paths, err := fs.ListCodeFiles(root)
	if err != nil {
		return nil, &acidterr.InputError{Path: root, Reason: err.Error()}
	}

	var files []model.CodeFile
	for _, p := range paths {
		text, err := fs.ReadFile(filepath.Join(root, p))
		if err != nil {
			// IoError (spec §7): the unreadable file is left out of the
			// returned bundle's file list; no warning is emitted, and
			// reading continues.
			continue
		}
		files = append(files, model.CodeFile{Path: p, Text: string(text), Language: languageFor(p)})
	}

	return &model.Bundle{
		Name:     manifest.Name,
		RootPath: root,
		Manifest: manifest,
		Document: document,
		Files:    files,
		Flavor:   flavor,
	}, nil
}

func languageFor(path string) model.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return model.LanguageIndentFamily
	default:
		return model.LanguageBraceFamily
	}
}

// skillFrontMatter is the YAML-like header SKILL.md carries between its
// `---` delimiters.
type skillFrontMatter struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Version      string   `yaml:"version"`
	Env          []string `yaml:"env"`
	Bins         []string `yaml:"bins"`
	Capabilities []string `yaml:"capabilities"`
}

// parseSkillManifest splits a SKILL.md file into its `---`-delimited
// YAML front-matter and markdown body (spec §6).
func parseSkillManifest(raw []byte) (model.Manifest, string, error) {
	text := string(raw)
	const delim = "---"

	trimmed := strings.TrimLeft(text, "\n\r\t ")
	if !strings.HasPrefix(trimmed, delim) {
		return model.Manifest{}, "", fmt.Errorf("SKILL.md missing front-matter delimiter")
	}
	rest := trimmed[len(delim):]
	end := strings.Index(rest, delim)
	if end < 0 {
		return model.Manifest{}, "", fmt.Errorf("SKILL.md front-matter is not closed")
	}
	header := rest[:end]
	body := strings.TrimLeft(rest[end+len(delim):], "\n\r")

	var fm skillFrontMatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return model.Manifest{}, "", fmt.Errorf("SKILL.md front-matter: %w", err)
	}

	return model.Manifest{
		Name:         fm.Name,
		Description:  fm.Description,
		Version:      fm.Version,
		Env:          fm.Env,
		Bins:         fm.Bins,
		Capabilities: fm.Capabilities,
	}, body, nil
}
