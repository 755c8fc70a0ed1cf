package mcpserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteToolUnknownTool(t *testing.T) {
	s := testServer()
	text, isError := s.executeTool(context.Background(), "does_not_exist", nil)
	assert.True(t, isError)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.Contains(t, decoded["error"], "unknown tool")
}

func TestExecuteToolBundleNotFound(t *testing.T) {
	s := testServer()
	text, isError := s.executeTool(context.Background(), toolScanBundle, map[string]interface{}{
		"bundle_path": "/nonexistent/path/for/acidtest-mcp-test",
	})
	assert.True(t, isError)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text), &decoded))
	assert.NotEmpty(t, decoded["error"])
}

func TestNewToolErrorOmitsEmptyDetails(t *testing.T) {
	text := NewToolError("boom", ErrCodeInternalError, nil)
	assert.NotContains(t, text, "details")
	assert.Contains(t, text, "boom")
}
