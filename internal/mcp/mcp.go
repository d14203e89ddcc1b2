package mcp

import (
	"context"
	"fmt"
)

// Tool describes one callable tool as announced by tools/list.
type Tool struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema declares the argument structure of a tool. Properties is
// always present, even when empty, so parameterless tools advertise
// "properties": {}.
type JSONSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// ToolRequest is the params payload of a tools/call request.
type ToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResult is the outcome of a tool call. Tool-level failures travel
// in-band: the error renders into Content and IsError is set, so the
// JSON-RPC response itself still succeeds.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one piece of tool result content.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// TextResult wraps text in a single text content block.
func TextResult(text string, isError bool) *ToolResult {
	return &ToolResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: isError,
	}
}

// ToolProvider supplies the tool catalog and executes calls against it.
// Call returns an UnknownToolError for names outside the catalog; every
// other failure is reported inside the ToolResult.
type ToolProvider interface {
	Tools() []Tool
	Call(ctx context.Context, req *ToolRequest) (*ToolResult, error)
}

// UnknownToolError reports a tools/call naming a tool not in the catalog.
// The server maps it to an invalid params protocol error.
type UnknownToolError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}
