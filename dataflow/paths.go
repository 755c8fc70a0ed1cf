package dataflow

import (
	"fmt"
	"strings"

	"github.com/currentlycurrently/acidtest/model"
)

// Confidence is how many nodes separate a finding's source and sink,
// bucketed per spec §4.7 over the ordered node sequence from source to
// sink inclusive (high ≤6 nodes, medium 7-11, low >11).
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// confidenceForLength buckets by node count, not edge count: a path of
// n edges visits n+1 nodes (source .. sink inclusive).
func confidenceForLength(nodes int) Confidence {
	switch {
	case nodes <= 6:
		return ConfidenceHigh
	case nodes <= 11:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// severityMatrix maps source subtype x sink subtype to a base severity
// (spec §4.7's severity matrix, transcribed verbatim).
var severityMatrix = map[SourceSubtype]map[SinkSubtype]model.Severity{
	SourceEnvVar: {
		SinkCommandExecution: model.SeverityCritical,
		SinkCodeEvaluation:   model.SeverityCritical,
		SinkNetworkRequest:   model.SeverityCritical,
		SinkFileWrite:        model.SeverityHigh,
		SinkDynamicImport:    model.SeverityHigh,
	},
	SourceUserInput: {
		SinkCommandExecution: model.SeverityCritical,
		SinkCodeEvaluation:   model.SeverityCritical,
		SinkNetworkRequest:   model.SeverityHigh,
		SinkFileWrite:        model.SeverityHigh,
		SinkDynamicImport:    model.SeverityHigh,
	},
	SourceNetworkResponse: {
		SinkCommandExecution: model.SeverityHigh,
		SinkCodeEvaluation:   model.SeverityHigh,
		SinkNetworkRequest:   model.SeverityMedium,
		SinkFileWrite:        model.SeverityHigh,
		SinkDynamicImport:    model.SeverityHigh,
	},
	SourceFileInput: {
		SinkCommandExecution: model.SeverityMedium,
		SinkCodeEvaluation:   model.SeverityMedium,
		SinkNetworkRequest:   model.SeverityMedium,
		SinkFileWrite:        model.SeverityHigh,
		SinkDynamicImport:    model.SeverityHigh,
	},
}

// categoryBySinkSubtype names each path's finding category by sink
// subtype (spec §4.7).
var categoryBySinkSubtype = map[SinkSubtype]string{
	SinkCommandExecution: "command-injection",
	SinkCodeEvaluation:   "code-injection",
	SinkNetworkRequest:   "data-exfiltration",
	SinkFileWrite:        "path-traversal",
	SinkDynamicImport:    "malicious-code",
}

var sourceDescription = map[SourceSubtype]string{
	SourceEnvVar:          "an environment variable",
	SourceUserInput:       "a tool-handler parameter",
	SourceNetworkResponse: "a network response",
	SourceFileInput:       "file contents",
}

var sinkDescription = map[SinkSubtype]string{
	SinkCommandExecution: "command execution",
	SinkCodeEvaluation:   "dynamic code evaluation",
	SinkNetworkRequest:   "an outbound network request",
	SinkFileWrite:        "a file write",
	SinkDynamicImport:    "a dynamic import",
}

// isConservativeNetworkResponse reports whether a network-response
// source node came from the ambiguous `.json()`/`.text()` member-call
// heuristic, which collides with unrelated uses like config.json()
// (spec §9 Open Question).
func isConservativeNetworkResponse(n Node) bool {
	return n.Meta.SourceSubtype == SourceNetworkResponse && n.Identifier != "fetch"
}

// pathResult is one reconstructed source-to-sink path.
type pathResult struct {
	source Node
	sink   Node
	nodes  []Node // source .. sink inclusive, in order
	edges  int
}

// shortestPaths runs a multi-source BFS from every source node and
// returns the shortest path to every tainted sink that a source
// actually reaches.
func shortestPaths(g *Graph, tainted map[string]bool) []pathResult {
	dist := make(map[string]int)
	parent := make(map[string]string)
	var queue []string
	for _, id := range g.SourceIDs {
		if _, ok := dist[id]; !ok {
			dist[id] = 0
			queue = append(queue, id)
		}
	}
	for i := 0; i < len(queue); i++ {
		cur := queue[i]
		for _, e := range g.Outgoing(cur) {
			if _, seen := dist[e.To]; seen {
				continue
			}
			dist[e.To] = dist[cur] + 1
			parent[e.To] = cur
			queue = append(queue, e.To)
		}
	}

	var results []pathResult
	for _, sinkID := range g.SinkIDs {
		if !tainted[sinkID] {
			continue
		}
		d, ok := dist[sinkID]
		if !ok {
			continue
		}
		var chain []string
		cur := sinkID
		for {
			chain = append([]string{cur}, chain...)
			p, hasParent := parent[cur]
			if !hasParent {
				break
			}
			cur = p
		}
		var nodes []Node
		for _, id := range chain {
			if n, ok := g.Node(id); ok {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 {
			continue
		}
		results = append(results, pathResult{
			source: nodes[0],
			sink:   nodes[len(nodes)-1],
			nodes:  nodes,
			edges:  d,
		})
	}
	return results
}

// Findings runs the full per-file dataflow analysis — propagate to a
// fixpoint, reconstruct the shortest path for every tainted sink, and
// render each surviving path as a model.Finding (spec §4.7).
func Findings(g *Graph, file string) []model.Finding {
	tainted := Propagate(g)
	paths := shortestPaths(g, tainted)

	var out []model.Finding
	for _, p := range paths {
		if isConservativeNetworkResponse(p.source) && p.edges <= 1 {
			// No intermediate hop: too weak a signal to report (spec §9
			// Open Question resolution).
			continue
		}

		confidence := confidenceForLength(p.edges + 1)
		if isConservativeNetworkResponse(p.source) && confidence == ConfidenceHigh {
			confidence = ConfidenceMedium
		}

		severity := model.SeverityMedium
		if bySink, ok := severityMatrix[p.source.Meta.SourceSubtype]; ok {
			if sev, ok := bySink[p.sink.Meta.SinkSubtype]; ok {
				severity = sev
			}
		}
		if confidence == ConfidenceLow {
			severity = severity.Downgrade()
		}

		category := categoryBySinkSubtype[p.sink.Meta.SinkSubtype]
		if category == "" {
			category = "dataflow"
		}

		var remediation *model.Remediation
		if r, ok := remediationFor(p.source.Meta.SourceSubtype, p.sink.Meta.SinkSubtype); ok {
			remediation = &r
		}

		out = append(out, model.Finding{
			Severity:     severity,
			Category:     category,
			Title:        title(p.source, p.sink),
			File:         file,
			Line:         p.sink.Line,
			Detail:       detail(p.source, p.sink, confidence),
			Evidence:     evidence(p.nodes),
			Remediation:  remediation,
		})
	}
	return out
}

func title(source, sink Node) string {
	return fmt.Sprintf("Tainted data flows from %s to %s",
		sourceDescription[source.Meta.SourceSubtype], sinkDescription[sink.Meta.SinkSubtype])
}

func detail(source, sink Node, confidence Confidence) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s) reaches %s (%s) at line %d with %s confidence.",
		sourceDescription[source.Meta.SourceSubtype], source.Identifier,
		sinkDescription[sink.Meta.SinkSubtype], sink.Identifier, sink.Line, confidence)
	if confidence != ConfidenceHigh {
		sb.WriteString(" Longer propagation chains are reported with reduced confidence.")
	}
	return sb.String()
}

// remediationTable keys a fixed remediation snippet by (source subtype,
// sink subtype) pair (spec §4.7).
var remediationTable = map[SourceSubtype]map[SinkSubtype]model.Remediation{
	SourceEnvVar: {
		SinkCommandExecution: {Title: "Avoid passing environment variables into shell commands", Suggestions: []string{"Validate and allowlist the value before passing it to a command-execution call."}},
		SinkNetworkRequest:   {Title: "Avoid sending environment variables over the network", Suggestions: []string{"Strip credentials from outbound request bodies and URLs."}},
	},
	SourceUserInput: {
		SinkCommandExecution: {Title: "Avoid passing handler input into shell commands", Suggestions: []string{"Validate input against an allowlist before command execution."}},
		SinkCodeEvaluation:   {Title: "Avoid evaluating handler input as code", Suggestions: []string{"Replace eval/Function with a data-only parser for this input."}},
	},
	SourceNetworkResponse: {
		SinkCommandExecution: {Title: "Avoid executing commands built from network responses", Suggestions: []string{"Treat response bodies as untrusted data, not executable input."}},
	},
}

func remediationFor(source SourceSubtype, sink SinkSubtype) (model.Remediation, bool) {
	bySink, ok := remediationTable[source]
	if !ok {
		return model.Remediation{}, false
	}
	r, ok := bySink[sink]
	return r, ok
}

func evidence(nodes []Node) string {
	if len(nodes) <= 7 {
		var parts []string
		for _, n := range nodes {
			parts = append(parts, label(n))
		}
		return strings.Join(parts, " -> ")
	}

	var parts []string
	parts = append(parts, label(nodes[0]))
	for _, n := range nodes[1:6] {
		parts = append(parts, label(n))
	}
	parts = append(parts, "...", label(nodes[len(nodes)-1]))
	return strings.Join(parts, " -> ")
}

func label(n Node) string {
	if n.Identifier != "" {
		return n.Identifier
	}
	return string(n.Kind)
}
