package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/currentlycurrently/acidtest/output"
)

func testServer() *Server {
	return NewServer("0.1.0-test", output.NewLogger(output.VerbosityDefault))
}

func TestHandleInitialize(t *testing.T) {
	s := testServer()
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "initialize"}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	assert.Nil(t, resp.Error)

	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	assert.Equal(t, "acidtest", result.ServerInfo.Name)
	assert.Equal(t, protocolVersion, result.ProtocolVersion)
}

func TestHandleRequestRejectsWrongVersion(t *testing.T) {
	s := testServer()
	req := &JSONRPCRequest{JSONRPC: "1.0", ID: 1, Method: "ping"}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidRequest, resp.Error.Code)
}

func TestHandleRequestUnknownMethod(t *testing.T) {
	s := testServer()
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "bogus/method"}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMethodNotFound, resp.Error.Code)
}

func TestHandleToolsList(t *testing.T) {
	s := testServer()
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	result, ok := resp.Result.(ToolsListResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 1)
	assert.Equal(t, toolScanBundle, result.Tools[0].Name)
	assert.Contains(t, result.Tools[0].InputSchema.Required, "bundle_path")
}

func TestHandleToolsCallMissingBundlePath(t *testing.T) {
	s := testServer()
	params, err := json.Marshal(ToolCallParams{Name: toolScanBundle, Arguments: map[string]interface{}{}})
	require.NoError(t, err)
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	result, ok := resp.Result.(ToolResult)
	require.True(t, ok)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "bundle_path is required")
}

func TestHandleToolsCallScansBundle(t *testing.T) {
	root := t.TempDir()
	writeScanFixture(t, root)

	s := testServer()
	params, err := json.Marshal(ToolCallParams{
		Name:      toolScanBundle,
		Arguments: map[string]interface{}{"bundle_path": root},
	})
	require.NoError(t, err)
	req := &JSONRPCRequest{JSONRPC: "2.0", ID: 1, Method: "tools/call", Params: params}

	resp := s.handleRequest(context.Background(), req)
	require.NotNil(t, resp)
	result, ok := resp.Result.(ToolResult)
	require.True(t, ok)
	assert.False(t, result.IsError)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &decoded))
	assert.Equal(t, "acidtest", decoded["tool"])
}

func TestInitializedNotificationHasNoResponse(t *testing.T) {
	s := testServer()
	req := &JSONRPCRequest{JSONRPC: "2.0", Method: "initialized"}
	assert.Nil(t, s.handleRequest(context.Background(), req))
}

func writeScanFixture(t *testing.T, root string) {
	t.Helper()
	content := "---\nname: fixture-skill\ndescription: test\n---\n# Fixture\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, "SKILL.md"), []byte(content), 0o644))
}
