package model

// ManifestFlavor distinguishes the primary SKILL.md manifest shape from the
// alternate API-client-oriented manifest shapes (mcp.json, server.json,
// package.json "mcp" key, claude_desktop_config.json). The alternate flavor
// changes later severity reweighting (spec §4.8) and suppresses several
// Layer 4 permission-mismatch checks (spec §4.6).
type ManifestFlavor int

const (
	FlavorPrimary ManifestFlavor = iota
	FlavorAlternate
)

// Manifest is the declarative metadata block a bundle carries: its
// declared name, description, version, requested environment variables,
// requested external programs, and declared capability tokens.
type Manifest struct {
	Name         string
	Description  string
	Version      string
	Env          []string
	Bins         []string
	Capabilities []string
}

// CodeFile is one source file discovered inside a bundle.
type CodeFile struct {
	Path     string // relative to the bundle root
	Text     string
	Language Language
}

// Language tags the syntax family a code file belongs to.
type Language string

const (
	LanguageBraceFamily Language = "brace" // .ts/.js/.mjs/.cjs
	LanguageIndentFamily Language = "indent" // .py
)

// Bundle is the unit of analysis: a manifest, an optional markdown
// document, and an ordered sequence of code files.
//
// Invariant: a bundle has either a Document or at least one CodeFile file;
// both may be empty only when Flavor is FlavorAlternate (spec §3).
type Bundle struct {
	Name     string
	RootPath string
	Manifest Manifest
	Document string
	Files    []CodeFile
	Flavor   ManifestFlavor
}

// IsAlternate reports whether the bundle was declared through an
// alternate-flavor manifest.
func (b *Bundle) IsAlternate() bool {
	return b.Flavor == FlavorAlternate
}

// Permissions is the normalized (bins, env, tools) triple that always
// appears in the report, with sequence-typed fields that are never nil.
type Permissions struct {
	Bins []string
	Env  []string
	Tools []string
}

// NormalizedPermissions returns the bundle's declared permissions as a
// Permissions triple with no nil slices, regardless of what the source
// manifest contained (spec §3, §8 invariant).
func (b *Bundle) NormalizedPermissions() Permissions {
	p := Permissions{
		Bins: b.Manifest.Bins,
		Env:  b.Manifest.Env,
		Tools: b.Manifest.Capabilities,
	}
	if p.Bins == nil {
		p.Bins = []string{}
	}
	if p.Env == nil {
		p.Env = []string{}
	}
	if p.Tools == nil {
		p.Tools = []string{}
	}
	return p
}
