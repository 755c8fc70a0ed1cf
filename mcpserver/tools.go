package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/currentlycurrently/acidtest/acidtest"
	"github.com/currentlycurrently/acidtest/config"
	"github.com/currentlycurrently/acidtest/discover"
	"github.com/currentlycurrently/acidtest/output"
)

const toolScanBundle = "scan_bundle"

// getToolDefinitions lists the tools this server exposes.
func (s *Server) getToolDefinitions() []Tool {
	return []Tool{
		{
			Name: toolScanBundle,
			Description: `Scan an AI-agent skill bundle directory for trust and security
findings and return a scored verdict (PASS/WARN/FAIL/DANGER).

Returns a JSON object with the same shape as acidtest's --output json
report: score, status, permissions, findings, and a recommendation.

Use when: a client wants to self-check a skill bundle it is about to
install or run, before granting it filesystem or network access.`,
			InputSchema: InputSchema{
				Type: "object",
				Properties: map[string]Property{
					"bundle_path":  {Type: "string", Description: "Path to the skill bundle directory to scan"},
					"patterns_dir": {Type: "string", Description: "Optional path to a directory of additional JSON pattern bundles"},
				},
				Required: []string{"bundle_path"},
			},
		},
	}
}

// executeTool runs a named tool and returns its text content and whether
// execution failed.
func (s *Server) executeTool(ctx context.Context, name string, args map[string]interface{}) (string, bool) {
	switch name {
	case toolScanBundle:
		return s.scanBundleTool(ctx, args)
	default:
		return NewToolError(fmt.Sprintf("unknown tool: %s", name), ErrCodeMethodNotFound, nil), true
	}
}

func (s *Server) scanBundleTool(ctx context.Context, args map[string]interface{}) (string, bool) {
	bundlePath, ok := args["bundle_path"].(string)
	if !ok || bundlePath == "" {
		return NewToolError("bundle_path is required", ErrCodeInvalidParams, nil), true
	}
	patternsDir, _ := args["patterns_dir"].(string)

	cfg, err := config.Load(bundlePath)
	if err != nil {
		s.logger.Warning("%s", err)
	}

	fs := discover.New()
	result, errResult, err := acidtest.Scan(ctx, fs, bundlePath, patternsDir, cfg, s.logger)
	if err != nil {
		return NewToolError(err.Error(), ErrCodeScanFailed, nil), true
	}
	if errResult != nil {
		return NewToolError(errResult.Message, ErrCodeBundleNotFound, map[string]string{"bundlePath": bundlePath}), true
	}

	var buf bytes.Buffer
	if err := output.NewJSONFormatterWithWriter(&buf).Format(*result); err != nil {
		return NewToolError(err.Error(), ErrCodeInternalError, nil), true
	}
	return buf.String(), false
}

// NewToolError renders a structured JSON error for a tool result's text
// content, mirroring the JSON-RPC error shape without using the wire
// envelope (tool errors ride inside a successful tools/call response).
func NewToolError(message string, code int, details interface{}) string {
	payload := struct {
		Error   string      `json:"error"`
		Code    int         `json:"code,omitempty"`
		Details interface{} `json:"details,omitempty"`
	}{Error: message, Code: code, Details: details}
	out, _ := json.Marshal(payload)
	return string(out)
}
