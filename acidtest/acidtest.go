// Package acidtest is the root orchestrator: it drives the five layer
// scanners over a loaded bundle in order, merges their findings into one
// stable sequence, filters and scores them, and produces the final
// model.ScanResult (or model.ErrorResult on a fatal acidterr.InputError).
//
// Grounded on the teacher's own top-level engine/runner — a thin sequencer
// over its independent analysis packages (graph, dsl, ruleset) that owns
// no analysis logic itself, only ordering, merging, and error triage.
package acidtest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/currentlycurrently/acidtest/acidterr"
	"github.com/currentlycurrently/acidtest/bundle"
	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/layer"
	"github.com/currentlycurrently/acidtest/model"
	"github.com/currentlycurrently/acidtest/pattern"
	"github.com/currentlycurrently/acidtest/scorer"
)

// ToolVersion is the report schema's `version` field (spec §6). It is a
// constant: the cmd package's build-time Version variable is separate
// and does not change it.
const ToolVersion = "0.1.0"

// orderedLayers runs in spec §5's semantic order: layer 4 depends on the
// merged output of layers 1-3, so this sequence is not a performance
// choice.
var orderedLayers = []layer.Func{
	layer.Manifest,
	layer.Document,
	layer.Code,
	layer.CrossRef,
	layer.Dataflow,
}

// Logger is the subset of output.Logger the orchestrator needs, kept
// narrow so acidtest doesn't import the peripheral output package
// (spec §2's package map keeps formatting outside the CORE).
type Logger interface {
	Progress(format string, args ...interface{})
	Warning(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Progress(string, ...interface{}) {}
func (noopLogger) Warning(string, ...interface{})  {}

// Scan loads the bundle at root via fs, runs every layer, and returns a
// fully scored model.ScanResult. A nil logger disables progress/warning
// output. Returns a model.ErrorResult, not an error, when the bundle
// cannot be identified at all (acidterr.InputError, spec §7) — this is
// the scan outcome, not a Go-level failure, since the caller still needs
// a diagnostic to report. Returns a Go error only in the truly
// unexpected case (pattern store construction failure).
func Scan(ctx context.Context, fs bundle.FileSystem, root string, patternsDir string, cfg config.Config, logger Logger) (*model.ScanResult, *model.ErrorResult, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	b, err := bundle.Load(fs, root)
	if err != nil {
		if inputErr, ok := err.(*acidterr.InputError); ok {
			return nil, &model.ErrorResult{BundlePath: root, Status: model.StatusError, Message: inputErr.Error()}, nil
		}
		return nil, &model.ErrorResult{BundlePath: root, Status: model.StatusError, Message: err.Error()}, nil
	}

	store, err := pattern.NewStore(patternsDir, 32)
	if err != nil {
		return nil, nil, err
	}
	store.LoadAll()
	store.SeedDefaults(pattern.Builtin())
	for _, w := range store.Warnings() {
		logger.Warning("%s", w)
	}

	lctx := layer.Context{Patterns: store}

	var findings []model.Finding
	var layerIndex []int
	for i, run := range orderedLayers {
		if ctx.Err() != nil {
			break
		}
		layerFindings := run(lctx, b, findings)
		findings = append(findings, layerFindings...)
		for range layerFindings {
			layerIndex = append(layerIndex, i)
		}
		logger.Progress("layer %d: %d finding(s)", i+1, len(layerFindings))
	}

	findings = stableSort(findings, layerIndex)
	findings = cfg.Filter(findings)

	reweighted, score, status, recommendation := scorer.Verdict(findings, b.IsAlternate())

	result := &model.ScanResult{
		RunID:          uuid.NewString(),
		SchemaVersion:  "1.0.0",
		Tool:           "acidtest",
		ToolVersion:    ToolVersion,
		BundleName:     b.Name,
		BundlePath:     b.RootPath,
		Score:          score,
		Status:         status,
		Permissions:    b.NormalizedPermissions(),
		Findings:       reweighted,
		Recommendation: recommendation,
	}
	return result, nil, nil
}

// stableSort orders findings by (layer-index, file-path, line, title)
// per spec §5, so the merged sequence is deterministic regardless of the
// order in which files were processed.
func stableSort(findings []model.Finding, layerIndex []int) []model.Finding {
	type entry struct {
		finding model.Finding
		layer   int
	}
	entries := make([]entry, len(findings))
	for i := range findings {
		entries[i] = entry{finding: findings[i], layer: layerIndex[i]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.layer != b.layer {
			return a.layer < b.layer
		}
		if a.finding.File != b.finding.File {
			return a.finding.File < b.finding.File
		}
		if a.finding.Line != b.finding.Line {
			return a.finding.Line < b.finding.Line
		}
		return a.finding.Title < b.finding.Title
	})
	out := make([]model.Finding, len(entries))
	for i := range entries {
		out[i] = entries[i].finding
	}
	return out
}
