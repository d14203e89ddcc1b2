package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for tool dispatch. Only catalog tools are recorded so
// label cardinality stays bounded by the registry.
var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testmo_tool_calls_total",
		Help: "Total MCP tool invocations by tool and outcome",
	}, []string{"tool", "outcome"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "testmo_tool_call_duration_seconds",
		Help:    "MCP tool call duration in seconds by tool",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"tool"})
)

// protocolVersion is the MCP protocol revision this server implements.
const protocolVersion = "2024-11-05"

// serverName is reported to the client in the initialize handshake.
const serverName = "testmo-mcp-server"

// Server speaks MCP over a Transport and dispatches tool calls to a
// ToolProvider.
type Server struct {
	transport Transport
	provider  ToolProvider
	version   string
	logger    zerolog.Logger
}

// NewServer creates an MCP server. The version is reported in the
// initialize handshake.
func NewServer(transport Transport, provider ToolProvider, version string) *Server {
	return &Server{
		transport: transport,
		provider:  provider,
		version:   version,
		logger:    log.With().Str("component", "mcp-server").Logger(),
	}
}

// Run starts the transport and processes requests until the input stream
// ends or ctx is cancelled. It blocks for the lifetime of the session.
func (s *Server) Run(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		return fmt.Errorf("start transport: %w", err)
	}

	s.logger.Info().Str("version", s.version).Msg("MCP server started")

	reqChan := s.transport.Receive()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("MCP server shutting down")
			return nil
		case req, ok := <-reqChan:
			if !ok {
				s.logger.Info().Msg("transport closed, MCP server stopping")
				return nil
			}
			s.handleRequest(ctx, req)
		}
	}
}

// Close shuts down the transport.
func (s *Server) Close() error {
	return s.transport.Close()
}

// handleRequest routes one request to its method handler and sends the
// response. Notifications are consumed without a response.
func (s *Server) handleRequest(ctx context.Context, req *Request) {
	if req.ID == nil || strings.HasPrefix(req.Method, "notifications/") {
		s.logger.Debug().Str("method", req.Method).Msg("notification received")
		return
	}

	s.logger.Debug().
		Str("method", req.Method).
		Interface("request_id", req.ID).
		Msg("request received")

	var resp *Response
	switch req.Method {
	case "initialize":
		resp = s.handleInitialize(req)
	case "ping":
		resp = s.handlePing(req)
	case "tools/list":
		resp = s.handleToolsList(req)
	case "tools/call":
		resp = s.handleToolsCall(ctx, req)
	default:
		resp = errorResponse(req.ID, MethodNotFound, "Method not found",
			fmt.Sprintf("unknown method: %s", req.Method))
	}

	if err := s.transport.Send(resp); err != nil {
		s.logger.Error().Err(err).
			Interface("request_id", req.ID).
			Msg("failed to send response")
	}
}

// handleInitialize answers the MCP handshake with the protocol version,
// the tools capability and the server identity.
func (s *Server) handleInitialize(req *Request) *Response {
	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": s.version,
		},
	}
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// handlePing answers liveness checks with an empty result.
func (s *Server) handlePing(req *Request) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{}}
}

// handleToolsList returns the tool catalog.
func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{JSONRPC: "2.0", ID: req.ID, Result: map[string]any{
		"tools": s.provider.Tools(),
	}}
}

// handleToolsCall dispatches a tool call. Unknown tools and malformed
// params become protocol errors; failures inside a known tool are already
// rendered into the result by the provider.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	toolReq, err := parseToolRequest(req.Params)
	if err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.provider.Call(ctx, toolReq)
	if err != nil {
		var unknown *UnknownToolError
		if errors.As(err, &unknown) {
			return errorResponse(req.ID, InvalidParams, "Invalid params", unknown.Error())
		}
		s.logger.Error().Err(err).Str("tool", toolReq.Name).Msg("tool call failed")
		toolCallsTotal.WithLabelValues(toolReq.Name, "error").Inc()
		return errorResponse(req.ID, InternalError, "Internal error", err.Error())
	}

	outcome := "ok"
	if result.IsError {
		outcome = "error"
	}
	toolCallsTotal.WithLabelValues(toolReq.Name, outcome).Inc()
	toolCallDuration.WithLabelValues(toolReq.Name).Observe(time.Since(start).Seconds())

	s.logger.Debug().
		Str("tool", toolReq.Name).
		Str("outcome", outcome).
		Dur("duration", time.Since(start)).
		Msg("tool call completed")

	return &Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// parseToolRequest converts the params field into a ToolRequest. Params
// arrive as a decoded map; a JSON round trip lands them in the typed form.
func parseToolRequest(params any) (*ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	var toolReq ToolRequest
	if err := json.Unmarshal(data, &toolReq); err != nil {
		return nil, fmt.Errorf("unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}
	if toolReq.Arguments == nil {
		toolReq.Arguments = map[string]any{}
	}
	return &toolReq, nil
}

// errorResponse builds a JSON-RPC error response.
func errorResponse(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
}
