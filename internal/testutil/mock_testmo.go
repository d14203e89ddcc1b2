// Package testutil provides testing utilities for the Testmo MCP server.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// apiPrefix is where the Testmo client addresses every endpoint. Handler
// paths are registered relative to it.
const apiPrefix = "/api/v1"

// MockResponse defines the behavior for a mock Testmo endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest captures one request received by the mock server. Path is
// relative to /api/v1.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

// MockTestmo is a configurable mock Testmo API server for testing. Handlers
// are keyed by method and path; unmatched requests get an empty list
// envelope.
type MockTestmo struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount      int
	LastRequestHeader http.Header
	Requests          []RecordedRequest
}

// NewMockTestmo creates a new mock Testmo API server.
func NewMockTestmo() *MockTestmo {
	mock := &MockTestmo{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		mock.Requests = append(mock.Requests, RecordedRequest{
			Method: r.Method,
			Path:   strings.TrimPrefix(r.URL.Path, apiPrefix),
			Query:  r.URL.Query(),
			Body:   body,
		})
		mock.mu.Unlock()

		// Check for custom handler
		mock.mu.RLock()
		handler, exists := mock.handlers[r.Method+" "+r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		// Default handler
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockTestmo) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockTestmo) Close() {
	m.server.Close()
}

// Reset clears all tracking state.
func (m *MockTestmo) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestHeader = nil
	m.Requests = nil
}

// SetHandler sets a custom handler for a method and path. The path is
// relative to /api/v1.
func (m *MockTestmo) SetHandler(method, path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[method+" "+apiPrefix+path] = handler
}

// SetResponse configures a simple response for a method and path.
func (m *MockTestmo) SetResponse(method, path string, resp MockResponse) {
	m.SetHandler(method, path, func(w http.ResponseWriter, r *http.Request) {
		// Add delay if specified
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		// Set headers
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		// Write status and body
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockTestmo) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// RequestsFor returns the recorded requests matching a method and path,
// relative to /api/v1.
func (m *MockTestmo) RequestsFor(method, path string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []RecordedRequest
	for _, req := range m.Requests {
		if req.Method == method && req.Path == path {
			matched = append(matched, req)
		}
	}
	return matched
}

// defaultHandler answers unrouted requests with an empty final page.
func (m *MockTestmo) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"result": [], "next_page": null}`))
}

// NewPageResponse creates a list envelope response. A zero nextPage marks
// the final page.
func NewPageResponse(itemsJSON string, nextPage int) MockResponse {
	next := "null"
	if nextPage > 0 {
		next = strconv.Itoa(nextPage)
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"result": %s, "next_page": %s}`, itemsJSON, next),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewObjectResponse creates a single-object envelope response.
func NewObjectResponse(objectJSON string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"result": %s}`, objectJSON),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewErrorResponse creates an API error response with a JSON error body.
func NewErrorResponse(statusCode int, message string) MockResponse {
	return MockResponse{
		StatusCode: statusCode,
		Body:       fmt.Sprintf(`{"message": %q}`, message),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewNoContentResponse creates a 204 No Content response.
func NewNoContentResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNoContent,
	}
}
