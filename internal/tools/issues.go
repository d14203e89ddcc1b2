package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listIssueConnectionsRequest struct {
	ProjectID       int64    `mapstructure:"project_id"`
	IntegrationType string   `mapstructure:"integration_type"`
	IsActive        *bool    `mapstructure:"is_active"`
	Page            int      `mapstructure:"page"`
	PerPage         int      `mapstructure:"per_page"`
	Expands         []string `mapstructure:"expands"`
}

func (r *listIssueConnectionsRequest) Validate() error {
	return validatePerPage(r.PerPage)
}

type getIssueConnectionRequest struct {
	ConnectionID int64    `mapstructure:"connection_id"`
	Expands      []string `mapstructure:"expands"`
}

func (r *getIssueConnectionRequest) Validate() error {
	if r.ConnectionID <= 0 {
		return &client.ValidationError{Message: "connection_id is required"}
	}
	return nil
}

func (r *Registry) registerIssueTools() {
	r.register(mcp.Tool{
		Name: "testmo_list_issue_connections",
		Description: `List available issue integrations (GitHub, Jira, etc.).

Discover configured issue tracker integrations before linking external issues to test cases.
Returns integration IDs, names, types, and connection details.`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":       intSchema("Filter by project ID (optional)"),
				"integration_type": stringSchema("Filter by integration type (e.g., 'github', 'jira', 'azure_devops')"),
				"is_active":        boolSchema("Filter by active status (optional)"),
				"page":             pageProperty(),
				"per_page":         perPageProperty(),
				"expands":          expandsProperty(),
			},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listIssueConnectionsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListIssueConnections(ctx, client.IssueConnectionFilter{
			ProjectID:       req.ProjectID,
			IntegrationType: req.IntegrationType,
			IsActive:        req.IsActive,
			Page:            req.Page,
			PerPage:         req.PerPage,
			Expands:         req.Expands,
		})
	})

	r.register(mcp.Tool{
		Name: "testmo_get_issue_connection",
		Description: `Get details of a specific issue connection.

Returns full configuration details for an issue integration including:
- Integration type (github, jira, azure_devops, etc.)
- Connection settings and credentials status
- Linked projects and repositories`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"connection_id": intSchema("The issue connection ID"),
				"expands":       expandsProperty(),
			},
			Required: []string{"connection_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getIssueConnectionRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetIssueConnection(ctx, req.ConnectionID, req.Expands)
	})
}
