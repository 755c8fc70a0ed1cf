package mcpserver

import "fmt"

// Standard JSON-RPC 2.0 error codes.
const (
	ErrCodeParseError     = -32700
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603

	// Custom acidtest server error codes (-32000 to -32099).
	ErrCodeBundleNotFound = -32001
	ErrCodeScanFailed     = -32002
)

// Error implements the error interface for RPCError.
func (e *RPCError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// ParseError builds a parse-error response.
func ParseError(detail string) *RPCError {
	return &RPCError{Code: ErrCodeParseError, Message: "Parse error: " + detail}
}

// InvalidRequestError builds an invalid-request response.
func InvalidRequestError(detail string) *RPCError {
	return &RPCError{Code: ErrCodeInvalidRequest, Message: "Invalid request: " + detail}
}

// MethodNotFoundError builds a method-not-found response.
func MethodNotFoundError(method string) *RPCError {
	return &RPCError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Method not found: %s", method),
		Data:    map[string]string{"method": method},
	}
}

// InvalidParamsError builds an invalid-params response.
func InvalidParamsError(detail string) *RPCError {
	return &RPCError{Code: ErrCodeInvalidParams, Message: "Invalid params: " + detail}
}

// BundleNotFoundError builds an error for a --bundle path that can't be read.
func BundleNotFoundError(path string) *RPCError {
	return &RPCError{
		Code:    ErrCodeBundleNotFound,
		Message: fmt.Sprintf("Bundle not found: %s", path),
		Data:    map[string]string{"path": path},
	}
}

// ScanFailedError builds an error for a scan that failed internally.
func ScanFailedError(detail string) *RPCError {
	return &RPCError{Code: ErrCodeScanFailed, Message: "Scan failed: " + detail}
}

// MakeErrorResponse wraps an RPCError as a JSON-RPC response.
func MakeErrorResponse(id interface{}, err *RPCError) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: id, Error: err}
}
