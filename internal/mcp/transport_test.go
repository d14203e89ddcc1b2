package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// drain collects all requests from the transport until the channel closes.
func drain(t *testing.T, tr Transport) []*Request {
	t.Helper()

	var requests []*Request
	timeout := time.After(5 * time.Second)
	for {
		select {
		case req, ok := <-tr.Receive():
			if !ok {
				return requests
			}
			requests = append(requests, req)
		case <-timeout:
			t.Fatal("timed out waiting for the transport to drain")
		}
	}
}

func TestStdioTransport_ReadsFrames(t *testing.T) {
	input := `{"jsonrpc": "2.0", "id": 1, "method": "ping"}` + "\n" +
		"\n" + // blank lines are skipped
		`{"jsonrpc": "2.0", "id": 2, "method": "tools/list"}` + "\n"

	var out strings.Builder
	tr := NewStdioTransportWithIO(strings.NewReader(input), &out)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	requests := drain(t, tr)
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if requests[0].Method != "ping" || requests[1].Method != "tools/list" {
		t.Errorf("methods = %s, %s", requests[0].Method, requests[1].Method)
	}
}

func TestStdioTransport_SendWritesOneLine(t *testing.T) {
	var out strings.Builder
	tr := NewStdioTransportWithIO(strings.NewReader(""), &out)

	err := tr.Send(&Response{ID: 1, Result: map[string]any{"ok": true}})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	frame := out.String()
	if !strings.HasSuffix(frame, "\n") {
		t.Fatal("frame must be newline terminated")
	}
	if strings.Count(frame, "\n") != 1 {
		t.Fatalf("frame spans multiple lines: %q", frame)
	}

	var resp Response
	if err := json.Unmarshal([]byte(frame), &resp); err != nil {
		t.Fatalf("frame is not valid JSON: %v", err)
	}
	if resp.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0 filled in by Send", resp.JSONRPC)
	}
}

func TestStdioTransport_ParseErrorAnswersInline(t *testing.T) {
	input := "this is not json\n" +
		`{"jsonrpc": "2.0", "id": 3, "method": "ping"}` + "\n"

	var out strings.Builder
	tr := NewStdioTransportWithIO(strings.NewReader(input), &out)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	requests := drain(t, tr)
	if len(requests) != 1 {
		t.Fatalf("requests = %d, want only the valid frame", len(requests))
	}
	if requests[0].Method != "ping" {
		t.Errorf("method = %s, want ping", requests[0].Method)
	}

	var resp Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.String())), &resp); err != nil {
		t.Fatalf("parse error response is not valid JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != ParseError {
		t.Errorf("error = %+v, want code %d", resp.Error, ParseError)
	}
}

func TestStdioTransport_RejectsWrongVersion(t *testing.T) {
	input := `{"jsonrpc": "1.0", "id": 4, "method": "ping"}` + "\n"

	var out strings.Builder
	tr := NewStdioTransportWithIO(strings.NewReader(input), &out)
	if err := tr.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if requests := drain(t, tr); len(requests) != 0 {
		t.Fatalf("requests = %d, want the frame rejected", len(requests))
	}

	var resp Response
	if err := json.Unmarshal([]byte(strings.TrimSpace(out.String())), &resp); err != nil {
		t.Fatalf("invalid request response is not valid JSON: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != InvalidRequest {
		t.Errorf("error = %+v, want code %d", resp.Error, InvalidRequest)
	}
	if resp.ID.(float64) != 4 {
		t.Errorf("id = %v, want the request id echoed", resp.ID)
	}
}

func TestStdioTransport_SendAfterClose(t *testing.T) {
	var out strings.Builder
	tr := NewStdioTransportWithIO(strings.NewReader(""), &out)

	if err := tr.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := tr.Send(&Response{ID: 1}); err == nil {
		t.Error("Send() after Close must fail")
	}
	if err := tr.Start(context.Background()); err == nil {
		t.Error("Start() after Close must fail")
	}
}
