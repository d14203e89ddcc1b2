// Package tools holds the Testmo tool catalog: the static definitions
// announced over tools/list and the handlers that execute tools/call
// requests against the Testmo client.
//
// Arguments arrive as loosely typed JSON maps and decode into typed request
// structs before any network call; a request that fails validation is
// rejected without touching the API. Results and errors render as indented
// JSON text so the calling assistant sees one uniform shape.
package tools

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"testmo-mcp-server/internal/fieldmap"
	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

// handlerFunc executes one tool call. The returned value is rendered to
// JSON; a returned error is rendered as an in-band tool error.
type handlerFunc func(ctx context.Context, args map[string]any) (any, error)

// Registry is the static tool catalog. It implements mcp.ToolProvider.
type Registry struct {
	client   *client.Client
	mappings fieldmap.Mappings
	logger   zerolog.Logger

	catalog  []mcp.Tool
	handlers map[string]handlerFunc
}

// New builds the registry. The catalog is assembled once here; there is no
// runtime registration.
func New(c *client.Client, mappings fieldmap.Mappings) *Registry {
	r := &Registry{
		client:   c,
		mappings: mappings,
		logger:   log.With().Str("component", "tools").Logger(),
		handlers: make(map[string]handlerFunc),
	}

	r.registerProjectTools()
	r.registerFolderTools()
	r.registerMilestoneTools()
	r.registerCaseTools()
	r.registerRunTools()
	r.registerAttachmentTools()
	r.registerAutomationTools()
	r.registerIssueTools()
	r.registerCompositeTools()
	r.registerUtilityTools()

	return r
}

// register adds one tool to the catalog. Duplicate names are a programmer
// error and panic at startup.
func (r *Registry) register(tool mcp.Tool, handler handlerFunc) {
	if _, exists := r.handlers[tool.Name]; exists {
		panic(fmt.Sprintf("duplicate tool registration: %s", tool.Name))
	}
	r.catalog = append(r.catalog, tool)
	r.handlers[tool.Name] = handler
}

// Tools implements mcp.ToolProvider.
func (r *Registry) Tools() []mcp.Tool {
	return r.catalog
}

// Call implements mcp.ToolProvider. Tool failures (API errors, validation
// rejections) are rendered into the result with IsError set; only an
// unknown tool name surfaces as an error to the protocol layer.
func (r *Registry) Call(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResult, error) {
	handler, ok := r.handlers[req.Name]
	if !ok {
		return nil, &mcp.UnknownToolError{Name: req.Name}
	}

	result, err := handler(ctx, req.Arguments)
	if err != nil {
		r.logger.Warn().Err(err).Str("tool", req.Name).Msg("tool call failed")
		return mcp.TextResult(renderError(err), true), nil
	}

	text, err := renderResult(result)
	if err != nil {
		return nil, fmt.Errorf("render %s result: %w", req.Name, err)
	}
	return mcp.TextResult(text, false), nil
}

// validator is implemented by request structs that constrain their input.
type validator interface {
	Validate() error
}

// decodeArgs decodes a tool argument map into a typed request struct and
// validates it. Input is weakly typed: JSON numbers land in integer fields
// regardless of how the client encoded them.
func decodeArgs(args map[string]any, req any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           req,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("build argument decoder: %w", err)
	}
	if err := dec.Decode(args); err != nil {
		return &client.ValidationError{Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	if v, ok := req.(validator); ok {
		return v.Validate()
	}
	return nil
}

// validatePerPage bounds the page size the way the Testmo API does. Zero
// means "use the default" and passes.
func validatePerPage(perPage int) error {
	if perPage < 0 || perPage > 100 {
		return &client.ValidationError{Message: fmt.Sprintf(
			"per_page must be between 1 and 100, got %d", perPage)}
	}
	return nil
}

// intSchema is a shorthand for an integer property schema.
func intSchema(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

// stringSchema is a shorthand for a string property schema.
func stringSchema(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

// boolSchema is a shorthand for a boolean property schema.
func boolSchema(description string) map[string]any {
	return map[string]any{"type": "boolean", "description": description}
}

// objectSchema is a shorthand for an object property schema.
func objectSchema(description string) map[string]any {
	return map[string]any{"type": "object", "description": description}
}

// arraySchema is a shorthand for an array property schema.
func arraySchema(description, itemType string) map[string]any {
	return map[string]any{
		"type":        "array",
		"description": description,
		"items":       map[string]any{"type": itemType},
	}
}

// pageProperty and perPageProperty are the shared pagination schemas.
func pageProperty() map[string]any {
	return intSchema("Page number (default: 1)")
}

func perPageProperty() map[string]any {
	return intSchema("Results per page (default: 100, max: 100)")
}

// expandsProperty is the shared schema for the expands list.
func expandsProperty() map[string]any {
	return arraySchema("Related entities to include", "string")
}
