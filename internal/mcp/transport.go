package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Transport moves JSON-RPC messages between an MCP client and the server.
type Transport interface {
	// Start begins listening for incoming messages.
	Start(ctx context.Context) error

	// Send transmits a response to the client.
	Send(response *Response) error

	// Receive returns the channel of incoming requests. The channel is
	// closed when the transport shuts down.
	Receive() <-chan *Request

	// Close shuts the transport down. Safe to call multiple times.
	Close() error
}

// StdioTransport speaks newline-delimited JSON-RPC over a reader/writer
// pair, stdin and stdout in production. Responses are serialized under a
// mutex so frames from concurrent sends never interleave.
type StdioTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	reqChan chan *Request
	logger  zerolog.Logger
	mu      sync.Mutex
	closed  bool
}

// NewStdioTransport creates a transport on os.Stdin and os.Stdout.
func NewStdioTransport() *StdioTransport {
	return NewStdioTransportWithIO(os.Stdin, os.Stdout)
}

// NewStdioTransportWithIO creates a transport on custom streams, used by
// tests to drive the protocol without a real stdio pair.
func NewStdioTransportWithIO(reader io.Reader, writer io.Writer) *StdioTransport {
	return &StdioTransport{
		reader:  bufio.NewReader(reader),
		writer:  bufio.NewWriter(writer),
		reqChan: make(chan *Request, 10),
		logger:  log.With().Str("component", "mcp-transport").Logger(),
	}
}

// Start spawns the read loop. The request channel closes when the input
// stream ends.
func (t *StdioTransport) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return fmt.Errorf("transport is closed")
	}
	t.mu.Unlock()

	go t.readLoop(ctx)
	return nil
}

// readLoop reads newline-delimited frames and parses them into requests.
// Malformed frames are answered directly with protocol errors; valid
// requests go to the channel.
func (t *StdioTransport) readLoop(ctx context.Context) {
	defer close(t.reqChan)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := t.reader.ReadString('\n')
		if err != nil && err != io.EOF {
			t.logger.Warn().Err(err).Msg("transport read failed")
			return
		}

		if frame := strings.TrimSpace(line); frame != "" {
			var req Request
			if uErr := json.Unmarshal([]byte(frame), &req); uErr != nil {
				t.sendParseError(uErr)
			} else if req.JSONRPC != "2.0" {
				t.sendInvalidRequest(req.ID, "invalid jsonrpc version")
			} else {
				select {
				case t.reqChan <- &req:
				case <-ctx.Done():
					return
				}
			}
		}

		if err == io.EOF {
			t.logger.Debug().Msg("transport input closed")
			return
		}
	}
}

// Send writes a response as a single JSON line and flushes it.
func (t *StdioTransport) Send(response *Response) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("transport is closed")
	}

	if response.JSONRPC == "" {
		response.JSONRPC = "2.0"
	}

	data, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	// A frame with a literal newline would split into two frames on the
	// client side.
	if strings.Contains(string(data), "\n") {
		return fmt.Errorf("response contains embedded newlines")
	}

	if _, err := t.writer.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	if err := t.writer.Flush(); err != nil {
		return fmt.Errorf("flush response: %w", err)
	}
	return nil
}

// Receive returns the channel of incoming requests.
func (t *StdioTransport) Receive() <-chan *Request {
	return t.reqChan
}

// Close marks the transport closed. The request channel is closed by the
// read loop, not here.
func (t *StdioTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	return nil
}

// sendParseError answers an unparseable frame.
func (t *StdioTransport) sendParseError(err error) {
	t.logger.Warn().Err(err).Msg("dropping unparseable frame")
	response := &Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    ParseError,
			Message: "Parse error",
			Data:    err.Error(),
		},
	}
	// Already handling an error; a failed send has nowhere to go.
	_ = t.Send(response)
}

// sendInvalidRequest answers a frame that is valid JSON but not a valid
// JSON-RPC 2.0 request.
func (t *StdioTransport) sendInvalidRequest(id any, reason string) {
	t.logger.Warn().Str("reason", reason).Msg("dropping invalid request")
	response := &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &Error{
			Code:    InvalidRequest,
			Message: "Invalid Request",
			Data:    reason,
		},
	}
	_ = t.Send(response)
}
