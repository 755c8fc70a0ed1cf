package pattern

import (
	"encoding/json"
	"fmt"
	"os"
)

// FileReport is one file's validation outcome, used by the standalone
// validator's exit contract (spec §4.1: report each file, list each error
// with its JSON-path, return non-zero on any failure).
type FileReport struct {
	Path   string
	Errors []ValidationError
}

// ValidatePath validates every JSON pattern bundle under path (a single
// file or a directory of category files) and returns one FileReport per
// file, in directory order.
func ValidatePath(path string) ([]FileReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("pattern validate: %w", err)
	}
	if !info.IsDir() {
		return []FileReport{validateOneFile(path)}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("pattern validate: %w", err)
	}
	var reports []FileReport
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		reports = append(reports, validateOneFile(path+string(os.PathSeparator)+e.Name()))
	}
	return reports, nil
}

func validateOneFile(path string) FileReport {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FileReport{Path: path, Errors: []ValidationError{{Path: "$", Message: err.Error()}}}
	}
	var rb rawBundle
	if err := json.Unmarshal(raw, &rb); err != nil {
		return FileReport{Path: path, Errors: []ValidationError{{Path: "$", Message: "invalid json: " + err.Error()}}}
	}
	_, errs := decodeAndValidate(rb)
	return FileReport{Path: path, Errors: errs}
}

// AnyFailed reports whether any report carries at least one error —
// the standalone validator's non-zero exit condition.
func AnyFailed(reports []FileReport) bool {
	for _, r := range reports {
		if len(r.Errors) > 0 {
			return true
		}
	}
	return false
}
