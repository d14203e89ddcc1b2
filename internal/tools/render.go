package tools

import (
	"encoding/json"
	"errors"

	"testmo-mcp-server/pkg/client"
)

// renderResult formats a tool result as indented JSON.
func renderResult(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// renderError formats a tool failure as the JSON error object the assistant
// is expected to read. API errors keep their status code and the structured
// details the service returned; everything else carries only a message.
func renderError(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return mustMarshal(map[string]any{
			"error":       true,
			"status_code": apiErr.StatusCode,
			"message":     apiErr.Message,
			"details":     apiErr.Details,
		})
	}
	return mustMarshal(map[string]any{
		"error":   true,
		"message": err.Error(),
	})
}

// mustMarshal indents a value that is known to serialize; the error maps
// above contain only JSON-safe types.
func mustMarshal(v map[string]any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return `{"error": true, "message": "failed to render error"}`
	}
	return string(data)
}
