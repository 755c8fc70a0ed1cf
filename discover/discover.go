// Package discover is the peripheral filesystem adapter: it walks a
// bundle directory on disk and implements bundle.FileSystem, keeping
// raw directory traversal and the code-file glob/exclude rule (spec
// §6) out of the CORE. Grounded on the teacher's recursive directory
// walkers in its own file-discovery code (os.ReadDir/filepath.Walk
// with an explicit skip-list), generalized to this scanner's narrower
// extension set and exclusion rules.
package discover

import (
	"os"
	"path/filepath"
	"strings"
)

var codeExtensions = map[string]bool{
	".ts": true, ".js": true, ".mjs": true, ".cjs": true, ".py": true,
}

var excludedDirs = map[string]bool{
	"node_modules": true, "dist": true, "build": true, "coverage": true,
	"test": true, "tests": true, "__tests__": true, "fixtures": true, "fixture": true,
}

// FS is a real-disk implementation of bundle.FileSystem, rooted
// nowhere in particular — every method takes an absolute or
// cwd-relative path, the same contract os.ReadFile/os.Stat use.
type FS struct{}

// New returns a disk-backed filesystem adapter.
func New() FS { return FS{} }

// ReadFile reads path from disk.
func (FS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Exists reports whether path exists on disk, file or directory.
func (FS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListCodeFiles walks root and returns the root-relative paths of
// every in-scope code file: a recognized extension, not under an
// excluded directory, not a declaration file (*.d.ts), and not
// minified (*.min.*) (spec §6).
func (FS) ListCodeFiles(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && excludedDirs[strings.ToLower(d.Name())] {
				return filepath.SkipDir
			}
			return nil
		}
		if !isInScope(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isInScope(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".d.ts") {
		return false
	}
	if strings.Contains(lower, ".min.") {
		return false
	}
	return codeExtensions[filepath.Ext(lower)]
}
