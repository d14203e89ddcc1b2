package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTestClient returns a client pointed at a test server, with pacing
// disabled so multi-request tests run without delays.
func newTestClient(t *testing.T, server *httptest.Server) *Client {
	t.Helper()

	c, err := New(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.logger = zerolog.Nop()
	t.Cleanup(func() { c.Close() })
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name: "valid config",
			config: Config{
				BaseURL: "https://acme.testmo.net",
				APIKey:  "secret",
			},
			expectError: false,
		},
		{
			name: "empty base URL",
			config: Config{
				APIKey: "secret",
			},
			expectError: true,
			errorMsg:    "base URL is required",
		},
		{
			name: "base URL without scheme",
			config: Config{
				BaseURL: "acme.testmo.net",
				APIKey:  "secret",
			},
			expectError: true,
			errorMsg:    `invalid base URL "acme.testmo.net"`,
		},
		{
			name: "base URL with unsupported scheme",
			config: Config{
				BaseURL: "ftp://acme.testmo.net",
				APIKey:  "secret",
			},
			expectError: true,
			errorMsg:    `invalid base URL "ftp://acme.testmo.net"`,
		},
		{
			name: "base URL without host",
			config: Config{
				BaseURL: "https://",
				APIKey:  "secret",
			},
			expectError: true,
			errorMsg:    `invalid base URL "https://"`,
		},
		{
			name: "empty API key",
			config: Config{
				BaseURL: "https://acme.testmo.net",
			},
			expectError: true,
			errorMsg:    "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{
		BaseURL: "https://acme.testmo.net/",
		APIKey:  "secret",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if c.baseURL != "https://acme.testmo.net" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.apiURL != "https://acme.testmo.net/api/v1" {
		t.Errorf("apiURL = %q, want %q", c.apiURL, "https://acme.testmo.net/api/v1")
	}
	if c.config.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", c.config.Timeout)
	}
	if c.config.CaseBatchLimit != 100 {
		t.Errorf("CaseBatchLimit = %d, want 100", c.config.CaseBatchLimit)
	}
	if c.config.UserAgent == "" {
		t.Error("UserAgent should default to a non-empty value")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("https://acme.testmo.net", "secret")

	if cfg.BaseURL != "https://acme.testmo.net" {
		t.Errorf("BaseURL = %q, want the given URL", cfg.BaseURL)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.PageDelay != 500*time.Millisecond {
		t.Errorf("PageDelay = %v, want 500ms", cfg.PageDelay)
	}
	if cfg.CaseBatchLimit != 100 {
		t.Errorf("CaseBatchLimit = %d, want 100", cfg.CaseBatchLimit)
	}
}

func TestSend_RequestShape(t *testing.T) {
	var gotPath, gotAuth, gotAccept, gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotUserAgent = r.Header.Get("User-Agent")
		writeJSON(w, http.StatusOK, `{"result": []}`)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}

	if gotPath != "/api/v1/projects" {
		t.Errorf("path = %q, want %q", gotPath, "/api/v1/projects")
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer test-key")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/json")
	}
	if gotUserAgent == "" {
		t.Error("User-Agent header not set")
	}
}

func TestSend_NoContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	resp, err := c.DeleteCase(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("DeleteCase() error = %v", err)
	}
	if success, ok := resp["success"].(bool); !ok || !success {
		t.Errorf("resp = %v, want {\"success\": true}", resp)
	}
}

func TestSend_APIErrorWithJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, `{"message": "Project not found"}`)
	}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.GetProject(context.Background(), 999)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 404 {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "request failed: Not Found" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "request failed: Not Found")
	}
	details, ok := apiErr.Details.(map[string]any)
	if !ok || details["message"] != "Project not found" {
		t.Errorf("Details = %v, want decoded error body", apiErr.Details)
	}
}

func TestSend_APIErrorWithTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	c := newTestClient(t, server)
	_, err := c.GetProject(context.Background(), 1)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
	if apiErr.Details != "upstream exploded" {
		t.Errorf("Details = %v, want raw body string", apiErr.Details)
	}
}

func TestSend_TimeoutIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeJSON(w, http.StatusOK, `{}`)
	}))
	defer server.Close()

	c, err := New(Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 20 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.logger = zerolog.Nop()
	defer c.Close()

	_, err = c.ListProjects(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Error("timeout must not be classified as an API error")
	}
}

func TestSend_ConnectionRefusedIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	c, err := New(Config{BaseURL: server.URL, APIKey: "test-key"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.logger = zerolog.Nop()
	defer c.Close()

	_, err = c.ListProjects(context.Background())

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("error = %v, want *TransportError", err)
	}
	if transportErr.Op != "GET /projects" {
		t.Errorf("Op = %q, want %q", transportErr.Op, "GET /projects")
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorClass
	}{
		{
			name:     "client error 404",
			status:   404,
			expected: ErrorClassClient,
		},
		{
			name:     "client error 403",
			status:   403,
			expected: ErrorClassClient,
		},
		{
			name:     "rate limit 429",
			status:   429,
			expected: ErrorClassRateLimit,
		},
		{
			name:     "server error 500",
			status:   500,
			expected: ErrorClassServer,
		},
		{
			name:     "server error 503",
			status:   503,
			expected: ErrorClassServer,
		},
		{
			name:     "success 200",
			status:   200,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := classifyStatus(tt.status)
			if result != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, result, tt.expected)
			}
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"/projects", "/projects"},
		{"/projects/42", "/projects/:id"},
		{"/projects/42/cases/7", "/projects/:id/cases/:id"},
		{"/attachments/cases/123", "/attachments/cases/:id"},
	}

	for _, tt := range tests {
		if got := normalizeEndpoint(tt.endpoint); got != tt.want {
			t.Errorf("normalizeEndpoint(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}

// countingTransport counts CloseIdleConnections calls so tests can observe
// connection release.
type countingTransport struct {
	http.RoundTripper
	closed atomic.Int32
}

func (t *countingTransport) CloseIdleConnections() {
	t.closed.Add(1)
}

func TestClose_ReleasesConnectionsOnce(t *testing.T) {
	c, err := New(Config{BaseURL: "https://acme.testmo.net", APIKey: "secret"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	c.logger = zerolog.Nop()

	ct := &countingTransport{RoundTripper: http.DefaultTransport}
	c.SetHTTPClient(&http.Client{Transport: ct})

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}

	if got := ct.closed.Load(); got != 1 {
		t.Errorf("CloseIdleConnections calls = %d, want 1", got)
	}
}

func TestScoped_ClosesOnReturn(t *testing.T) {
	ct := &countingTransport{RoundTripper: http.DefaultTransport}
	cfg := Config{BaseURL: "https://acme.testmo.net", APIKey: "secret"}

	err := Scoped(context.Background(), cfg, func(_ context.Context, c *Client) error {
		c.logger = zerolog.Nop()
		c.SetHTTPClient(&http.Client{Transport: ct})
		return nil
	})
	if err != nil {
		t.Fatalf("Scoped() error = %v", err)
	}
	if got := ct.closed.Load(); got != 1 {
		t.Errorf("CloseIdleConnections calls = %d, want 1", got)
	}
}

func TestScoped_ClosesOnError(t *testing.T) {
	ct := &countingTransport{RoundTripper: http.DefaultTransport}
	cfg := Config{BaseURL: "https://acme.testmo.net", APIKey: "secret"}
	wantErr := errors.New("operation failed")

	err := Scoped(context.Background(), cfg, func(_ context.Context, c *Client) error {
		c.logger = zerolog.Nop()
		c.SetHTTPClient(&http.Client{Transport: ct})
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Scoped() error = %v, want %v", err, wantErr)
	}
	if got := ct.closed.Load(); got != 1 {
		t.Errorf("CloseIdleConnections calls = %d, want 1", got)
	}
}

func TestScoped_ClosesOnCancellation(t *testing.T) {
	ct := &countingTransport{RoundTripper: http.DefaultTransport}
	cfg := Config{BaseURL: "https://acme.testmo.net", APIKey: "secret"}

	ctx, cancel := context.WithCancel(context.Background())
	err := Scoped(ctx, cfg, func(ctx context.Context, c *Client) error {
		c.logger = zerolog.Nop()
		c.SetHTTPClient(&http.Client{Transport: ct})
		cancel()
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scoped() error = %v, want context.Canceled", err)
	}
	if got := ct.closed.Load(); got != 1 {
		t.Errorf("CloseIdleConnections calls = %d, want 1", got)
	}
}

func TestScoped_ClosesOnPanic(t *testing.T) {
	ct := &countingTransport{RoundTripper: http.DefaultTransport}
	cfg := Config{BaseURL: "https://acme.testmo.net", APIKey: "secret"}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		_ = Scoped(context.Background(), cfg, func(_ context.Context, c *Client) error {
			c.logger = zerolog.Nop()
			c.SetHTTPClient(&http.Client{Transport: ct})
			panic("tool handler exploded")
		})
	}()

	if got := ct.closed.Load(); got != 1 {
		t.Errorf("CloseIdleConnections calls = %d, want 1", got)
	}
}

func TestScoped_InvalidConfig(t *testing.T) {
	called := false
	err := Scoped(context.Background(), Config{}, func(_ context.Context, c *Client) error {
		called = true
		return nil
	})
	if err == nil || err.Error() != "base URL is required" {
		t.Errorf("Scoped() error = %v, want config validation error", err)
	}
	if called {
		t.Error("fn must not run when the client cannot be built")
	}
}

func TestWebURL(t *testing.T) {
	c, err := New(Config{BaseURL: "https://acme.testmo.net/", APIKey: "secret"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	tests := []struct {
		name         string
		projectID    int64
		resourceType string
		groupID      int64
		want         string
	}{
		{
			name:         "repository link",
			projectID:    21,
			resourceType: "repositories",
			groupID:      0,
			want:         "https://acme.testmo.net/repositories/21",
		},
		{
			name:         "runs link with group",
			projectID:    21,
			resourceType: "runs",
			groupID:      7,
			want:         "https://acme.testmo.net/runs/21?group_id=7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.WebURL(tt.projectID, tt.resourceType, tt.groupID); got != tt.want {
				t.Errorf("WebURL() = %q, want %q", got, tt.want)
			}
		})
	}
}
