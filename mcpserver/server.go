package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/currentlycurrently/acidtest/output"
)

const protocolVersion = "2024-11-05"

// Server handles MCP protocol communication over stdio for the
// scan_bundle tool.
type Server struct {
	version string
	logger  *output.Logger
}

// NewServer creates an MCP server that scans bundles on request.
func NewServer(version string, logger *output.Logger) *Server {
	if logger == nil {
		logger = output.NewLoggerWithWriter(output.VerbosityDefault, os.Stderr)
	}
	return &Server{version: version, logger: logger}
}

// ServeStdio reads JSON-RPC requests from stdin, one per line, and
// writes responses to stdout until the client disconnects.
func (s *Server) ServeStdio(ctx context.Context) error {
	reader := bufio.NewReader(os.Stdin)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(os.Stderr, "client disconnected")
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
		if len(line) <= 1 {
			continue
		}

		var request JSONRPCRequest
		if err := json.Unmarshal([]byte(line), &request); err != nil {
			s.sendResponse(MakeErrorResponse(nil, ParseError(err.Error())))
			continue
		}

		response := s.handleRequest(ctx, &request)
		if response != nil {
			s.sendResponse(response)
		}
	}
}

func (s *Server) sendResponse(resp *JSONRPCResponse) {
	out, err := json.Marshal(resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func (s *Server) handleRequest(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	start := time.Now()
	defer func() {
		s.logger.Debug("%s completed in %s", req.Method, time.Since(start))
	}()

	if req.JSONRPC != "2.0" {
		return MakeErrorResponse(req.ID, InvalidRequestError("jsonrpc must be '2.0'"))
	}
	if req.Method == "" {
		return MakeErrorResponse(req.ID, InvalidRequestError("method is required"))
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "initialized", "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return SuccessResponse(req.ID, map[string]string{"status": "ok"})
	default:
		return MakeErrorResponse(req.ID, MethodNotFoundError(req.Method))
	}
}

func (s *Server) handleInitialize(req *JSONRPCRequest) *JSONRPCResponse {
	var params InitializeParams
	if req.Params != nil {
		_ = json.Unmarshal(req.Params, &params)
		s.logger.Debug("client: %s %s", params.ClientInfo.Name, params.ClientInfo.Version)
	}

	return SuccessResponse(req.ID, InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      ServerInfo{Name: "acidtest", Version: s.version},
		Capabilities:    Capabilities{Tools: &ToolsCapability{ListChanged: false}},
	})
}

func (s *Server) handleToolsList(req *JSONRPCRequest) *JSONRPCResponse {
	return SuccessResponse(req.ID, ToolsListResult{Tools: s.getToolDefinitions()})
}

func (s *Server) handleToolsCall(ctx context.Context, req *JSONRPCRequest) *JSONRPCResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return MakeErrorResponse(req.ID, InvalidParamsError(err.Error()))
	}
	if params.Name == "" {
		return MakeErrorResponse(req.ID, InvalidParamsError("tool name is required"))
	}

	text, isError := s.executeTool(ctx, params.Name, params.Arguments)
	return SuccessResponse(req.ID, ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: isError,
	})
}
