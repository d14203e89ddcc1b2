package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type getMilestoneRequest struct {
	ProjectID   int64 `mapstructure:"project_id"`
	MilestoneID int64 `mapstructure:"milestone_id"`
}

func (r *getMilestoneRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.MilestoneID <= 0 {
		return &client.ValidationError{Message: "milestone_id is required"}
	}
	return nil
}

func (r *Registry) registerMilestoneTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_milestones",
		Description: "List all milestones in a project (e.g., release/5.2.0).",
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
		return r.client.ListMilestones(ctx, req.ProjectID)
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_milestone",
		Description: "Get details of a specific milestone by ID.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":   intSchema("The project ID"),
				"milestone_id": intSchema("The milestone ID"),
			},
			Required: []string{"project_id", "milestone_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getMilestoneRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetMilestone(ctx, req.ProjectID, req.MilestoneID)
	})
}
