package client

import (
	"fmt"
)

// APIError represents a non-2xx response from the Testmo API.
// Details holds the decoded error body when the API returned JSON,
// or the raw body as a string otherwise.
type APIError struct {
	StatusCode int
	Message    string
	Details    any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("testmo API error (status %d): %s", e.StatusCode, e.Message)
}

// TransportError represents a failure to complete an HTTP exchange:
// connection refused, timeout, or a cancelled context. No status code
// is carried because no response was received.
type TransportError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("testmo transport error: %s: %v", e.Op, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ValidationError reports input rejected before any request was sent.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}
