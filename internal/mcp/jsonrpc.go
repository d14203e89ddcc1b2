// Package mcp implements the Model Context Protocol server side: JSON-RPC
// 2.0 framing over a stdio transport and the MCP method surface
// (initialize, tools/list, tools/call, ping). Tool execution is delegated
// to a ToolProvider so the protocol layer stays independent of the tool
// catalog.
package mcp

// Request is a JSON-RPC 2.0 request. A nil ID marks a notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response carrying either Result or Error.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id,omitempty"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700 // invalid JSON received
	InvalidRequest = -32600 // invalid JSON-RPC request structure
	MethodNotFound = -32601 // unknown MCP method
	InvalidParams  = -32602 // invalid method parameters or unknown tool
	InternalError  = -32603 // server internal error
)
