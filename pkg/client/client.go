// Package client provides the core Testmo HTTP client with request pacing,
// auto-pagination, batching, and error handling.
//
// Every method maps to one Testmo REST endpoint and sends its request exactly
// once; failed requests are never retried. Multi-request helpers (GetAll*,
// BatchCreateCases, BatchDeleteCases) issue their requests sequentially with
// a fixed delay between consecutive calls.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"testmo-mcp-server/pkg/ratelimit"
)

// Prometheus metrics for Testmo client operations.
var (
	testmoRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testmo_requests_total",
		Help: "Total Testmo API requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	testmoRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "testmo_request_duration_seconds",
		Help:    "Testmo API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	testmoErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testmo_errors_total",
		Help: "Total Testmo API errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassValidation represents input rejected before a request is sent.
	ErrorClassValidation ErrorClass = "validation"
)

// apiPath is the versioned API prefix appended to the instance base URL.
const apiPath = "/api/v1"

// maxPerPage is the largest page size the Testmo API accepts.
const maxPerPage = 100

// Client is the Testmo API client.
type Client struct {
	httpClient *http.Client
	baseURL    string // instance root, no trailing slash
	apiURL     string // baseURL + apiPath
	config     Config
	logger     zerolog.Logger
	closeOnce  sync.Once
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the Testmo instance URL, e.g. "https://acme.testmo.net".
	BaseURL string

	// APIKey is the Testmo API token, sent as a bearer credential.
	APIKey string

	// Timeout applies to each individual HTTP request.
	Timeout time.Duration

	// PageDelay is the pause between consecutive requests in
	// auto-pagination and batch operations. Zero disables pacing.
	PageDelay time.Duration

	// CaseBatchLimit is the maximum number of cases per bulk create request.
	CaseBatchLimit int

	// UserAgent header sent with every request.
	UserAgent string
}

// DefaultConfig returns a configuration with production defaults.
func DefaultConfig(baseURL, apiKey string) Config {
	return Config{
		BaseURL:        baseURL,
		APIKey:         apiKey,
		Timeout:        30 * time.Second,
		PageDelay:      ratelimit.DefaultInterval,
		CaseBatchLimit: maxPerPage,
		UserAgent:      "testmo-mcp-server/1.0",
	}
}

// New creates a new Testmo client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid base URL %q", cfg.BaseURL)
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.CaseBatchLimit <= 0 {
		cfg.CaseBatchLimit = maxPerPage
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "testmo-mcp-server/1.0"
	}

	logger := log.With().Str("component", "testmo-client").Logger()

	baseURL := strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: baseURL,
		apiURL:  baseURL + apiPath,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Scoped runs fn with a client built from cfg and closes the client on every
// exit path, including panics and context cancellation inside fn.
func Scoped(ctx context.Context, cfg Config, fn func(context.Context, *Client) error) error {
	c, err := New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(ctx, c)
}

// send performs a single API request and decodes the JSON response. Numbers
// are decoded as json.Number so large IDs survive a round trip.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, body any) (map[string]any, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, endpoint, query, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, endpoint)
}

// attachmentField is the multipart form field Testmo expects uploads in.
const attachmentField = "attachments[]"

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// sendUpload performs a multipart upload of a single file.
func (c *Client) sendUpload(ctx context.Context, endpoint, filename, contentType string, data []byte) (map[string]any, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		attachmentField, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create multipart field: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write multipart field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, endpoint, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, endpoint)
}

// newRequest builds an authenticated request for an API endpoint.
func (c *Client) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.apiURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	return req, nil
}

// do executes a prepared request, records metrics and classifies failures.
func (c *Client) do(req *http.Request, endpoint string) (map[string]any, error) {
	label := normalizeEndpoint(endpoint)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	testmoRequestDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())

	if err != nil {
		testmoErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		testmoRequestsTotal.WithLabelValues(label, req.Method, "network_error").Inc()
		c.logger.Error().Err(err).
			Str("endpoint", endpoint).
			Str("method", req.Method).
			Msg("HTTP request failed")
		return nil, &TransportError{Op: req.Method + " " + endpoint, Err: err}
	}
	defer resp.Body.Close()

	testmoRequestsTotal.WithLabelValues(label, req.Method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		apiErr := errorFromResponse(resp)
		class := classifyStatus(resp.StatusCode)
		testmoErrorsTotal.WithLabelValues(string(class)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Testmo request error")
		return nil, apiErr
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Testmo request completed")

	if resp.StatusCode == http.StatusNoContent {
		return map[string]any{"success": true}, nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return payload, nil
}

// errorFromResponse builds an APIError from a non-2xx response. The body is
// kept as decoded JSON when possible and as a raw string otherwise.
func errorFromResponse(resp *http.Response) *APIError {
	text := http.StatusText(resp.StatusCode)
	if text == "" {
		text = strconv.Itoa(resp.StatusCode)
	}
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    "request failed: " + text,
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var details any
	if err := dec.Decode(&details); err != nil {
		apiErr.Details = string(raw)
		return apiErr
	}
	apiErr.Details = details
	return apiErr
}

// classifyStatus categorizes an HTTP error status for observability.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

var endpointIDPattern = regexp.MustCompile(`/\d+`)

// normalizeEndpoint replaces numeric path segments so metric labels stay
// low-cardinality: "/projects/42/cases/7" becomes "/projects/:id/cases/:id".
func normalizeEndpoint(endpoint string) string {
	return endpointIDPattern.ReplaceAllString(endpoint, "/:id")
}

// pacer returns a request pacer for one multi-request operation. Each
// operation gets its own pacer so the first request is never delayed.
func (c *Client) pacer() *ratelimit.Pacer {
	return ratelimit.NewPacer(c.config.PageDelay)
}

// PageDelay returns the configured delay between consecutive paced requests.
// Callers composing their own multi-request loops use it to keep the same
// pacing as the client's built-in helpers.
func (c *Client) PageDelay() time.Duration {
	return c.config.PageDelay
}

// WebURL returns a browser link for a project-scoped resource, for example
// WebURL(21, "repositories", 0) on "https://acme.testmo.net" yields
// "https://acme.testmo.net/repositories/21". A non-zero groupID is appended
// as a group_id query parameter.
func (c *Client) WebURL(projectID int64, resourceType string, groupID int64) string {
	u := fmt.Sprintf("%s/%s/%d", c.baseURL, resourceType, projectID)
	if groupID != 0 {
		u += fmt.Sprintf("?group_id=%d", groupID)
	}
	return u
}

// Close releases transport resources held by the client. It is safe to call
// multiple times; only the first call has an effect.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.httpClient.CloseIdleConnections()
		c.logger.Debug().Msg("Testmo client closed")
	})
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
