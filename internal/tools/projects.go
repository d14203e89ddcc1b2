package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type getProjectRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
}

func (r *getProjectRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return nil
}

func (r *Registry) registerProjectTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_projects",
		Description: "List all accessible Testmo projects. Returns project IDs, names, and metadata.",
		InputSchema: mcp.JSONSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		return r.client.ListProjects(ctx)
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_project",
		Description: "Get details of a specific Testmo project by ID.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getProjectRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetProject(ctx, req.ProjectID)
	})
}
