package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type getWebURLRequest struct {
	ProjectID    int64  `mapstructure:"project_id"`
	ResourceType string `mapstructure:"resource_type"`
	ResourceID   int64  `mapstructure:"resource_id"`
}

func (r *getWebURLRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return nil
}

func (r *Registry) registerUtilityTools() {
	r.register(mcp.Tool{
		Name: "testmo_get_field_mappings",
		Description: `Get the field value mappings for Testmo API. Returns mappings for:
- project_id: Project name to ID mapping
- custom_priority: Priority levels (Critical, High, Medium, Low)
- custom_type: Test types (Functional, Acceptance, Security, etc.)
- configurations: Platform IDs
- state_id: Test case states (Draft, Review, Approved, Active, Deprecated)
- result_status_id: Test result statuses (Untested, Passed, Failed, Retest, Blocked, Skipped)
- automation_run_status: Automation run statuses (Success, Failure, Running)
- tags: Tag categories (domain, tier-type, scope, risk)

Use this to understand correct field values before creating/updating test cases.`,
		InputSchema: mcp.JSONSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return r.mappings, nil
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_web_url",
		Description: "Generate a web URL for viewing a resource in Testmo.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":    intSchema("The project ID"),
				"resource_type": stringSchema("Type of resource (repositories, runs)"),
				"resource_id":   intSchema("Resource ID (e.g., folder ID)"),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getWebURLRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		if req.ResourceType == "" {
			req.ResourceType = "repositories"
		}
		return map[string]any{
			"url": r.client.WebURL(req.ProjectID, req.ResourceType, req.ResourceID),
		}, nil
	})
}
