// Package pattern loads, validates, and caches the declarative detection
// rule bundles consumed by Layers 1-3 (manifest audit, document scan, code
// scan). Grounded on the teacher's ruleset package: JSON-file bundles, a
// small explicit loader, and a process-wide cache — but keyed for local
// rule files rather than a remote catalog (DESIGN.md explains why the
// teacher's checksum/download cache was dropped in favor of a plain LRU).
package pattern

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/currentlycurrently/acidtest/model"
)

// rawBundle is the on-disk JSON shape: {category, patterns: [...]}.
type rawBundle struct {
	Category string        `json:"category"`
	Patterns []rawPattern  `json:"patterns"`
}

type rawRemediation struct {
	Title       string   `json:"title"`
	Suggestions []string `json:"suggestions"`
	Autofix     bool     `json:"autofix,omitempty"`
	Replacement string   `json:"replacement,omitempty"`
}

type rawMatch struct {
	Type       string `json:"type"`
	Value      string `json:"value"`
	RegexFlags string `json:"regexFlags,omitempty"`
}

type rawPattern struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Severity    string          `json:"severity"`
	Match       rawMatch        `json:"match"`
	TargetLayer string          `json:"targetLayer"`
	Category    string          `json:"category"`
	Remediation *rawRemediation `json:"remediation,omitempty"`
}

// Store loads rule bundles from a directory (one JSON file per category,
// category name = file basename) and caches them by category in a bounded
// LRU, per spec §9's "lazy-load on first use, reuse forever" cache policy.
type Store struct {
	dir   string
	mu    sync.Mutex
	cache *lru.Cache[string, []model.Pattern]
	// warnings accumulates non-fatal PatternLoadError diagnostics from
	// LoadAll/Category calls until Warnings drains them, for the
	// orchestrator to log.
	warnings []string
}

// NewStore creates a pattern store rooted at dir, with a cache bounded to
// cacheSize categories (a handful in practice: credentials, injection,
// obfuscation, sensitive-paths, network, shell, filesystem...).
func NewStore(dir string, cacheSize int) (*Store, error) {
	if cacheSize <= 0 {
		cacheSize = 32
	}
	c, err := lru.New[string, []model.Pattern](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("pattern: create cache: %w", err)
	}
	return &Store{dir: dir, cache: c}, nil
}

// Warnings returns the PatternLoadError diagnostics accumulated since the
// store was created or since Warnings was last drained.
func (s *Store) Warnings() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.warnings
	s.warnings = nil
	return w
}

func (s *Store) warn(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, fmt.Sprintf(format, args...))
}

// Category returns the cached patterns for a category, loading and
// validating them from disk on first use. A malformed bundle is a warning,
// not an error: the orchestrator proceeds without that category (spec §4.1).
func (s *Store) Category(name string) []model.Pattern {
	if patterns, ok := s.cache.Get(name); ok {
		return patterns
	}

	path := filepath.Join(s.dir, name+".json")
	patterns, err := s.loadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.warn("pattern category %q: %v", name, err)
		}
		return nil
	}
	s.cache.Add(name, patterns)
	return patterns
}

// SeedDefaults installs each bundle's patterns into the cache under its
// category name, but only for categories not already cached from disk —
// on-disk bundles always take precedence. Used at startup to fall back to
// Builtin() for any category the configured pattern directory doesn't
// supply.
func (s *Store) SeedDefaults(bundles []model.CategoryBundle) {
	for _, b := range bundles {
		if _, ok := s.cache.Get(b.Category); ok {
			continue
		}
		s.cache.Add(b.Category, b.Patterns)
	}
}

// AllCached returns every category currently in the cache — the on-disk
// bundles LoadAll warmed plus any SeedDefaults fallback — for layers that
// need every loaded pattern regardless of which category it lives under
// (e.g. Layer 3's code-layer sweep).
func (s *Store) AllCached() []model.CategoryBundle {
	var out []model.CategoryBundle
	for _, name := range s.cache.Keys() {
		if patterns, ok := s.cache.Peek(name); ok {
			out = append(out, model.CategoryBundle{Category: name, Patterns: patterns})
		}
	}
	return out
}

// LoadAll eagerly loads every *.json file in the store's directory,
// returning the categories that loaded successfully. Used at startup to
// warm the cache and to surface all PatternLoadErrors up front.
func (s *Store) LoadAll() []model.CategoryBundle {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.warn("pattern directory %q: %v", s.dir, err)
		return nil
	}

	var bundles []model.CategoryBundle
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		category := strings.TrimSuffix(e.Name(), ".json")
		patterns := s.Category(category)
		if patterns == nil {
			continue
		}
		bundles = append(bundles, model.CategoryBundle{Category: category, Patterns: patterns})
	}
	return bundles
}

// loadFile reads, parses, and validates one category's JSON bundle.
func (s *Store) loadFile(path string) ([]model.Pattern, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var rb rawBundle
	if err := json.Unmarshal(raw, &rb); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	patterns, errs := decodeAndValidate(rb)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%d validation error(s): %s", len(errs), errs[0])
	}
	return patterns, nil
}
