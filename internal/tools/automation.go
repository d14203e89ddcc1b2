package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listAutomationSourcesRequest struct {
	ProjectID int64    `mapstructure:"project_id"`
	IsRetired *bool    `mapstructure:"is_retired"`
	Page      int      `mapstructure:"page"`
	PerPage   int      `mapstructure:"per_page"`
	Expands   []string `mapstructure:"expands"`
}

func (r *listAutomationSourcesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type getAutomationSourceRequest struct {
	AutomationSourceID int64    `mapstructure:"automation_source_id"`
	Expands            []string `mapstructure:"expands"`
}

func (r *getAutomationSourceRequest) Validate() error {
	if r.AutomationSourceID <= 0 {
		return &client.ValidationError{Message: "automation_source_id is required"}
	}
	return nil
}

type listAutomationRunsRequest struct {
	ProjectID     int64    `mapstructure:"project_id"`
	SourceID      string   `mapstructure:"source_id"`
	MilestoneID   string   `mapstructure:"milestone_id"`
	Status        string   `mapstructure:"status"`
	CreatedAfter  string   `mapstructure:"created_after"`
	CreatedBefore string   `mapstructure:"created_before"`
	Tags          string   `mapstructure:"tags"`
	Page          int      `mapstructure:"page"`
	PerPage       int      `mapstructure:"per_page"`
	Expands       []string `mapstructure:"expands"`
}

func (r *listAutomationRunsRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type getAutomationRunRequest struct {
	AutomationRunID int64    `mapstructure:"automation_run_id"`
	Expands         []string `mapstructure:"expands"`
}

func (r *getAutomationRunRequest) Validate() error {
	if r.AutomationRunID <= 0 {
		return &client.ValidationError{Message: "automation_run_id is required"}
	}
	return nil
}

func (r *Registry) registerAutomationTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_automation_sources",
		Description: "List automation sources in a project (CI/CD integrations).",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"is_retired": boolSchema("Filter by retired status (optional)"),
				"page":       pageProperty(),
				"per_page":   perPageProperty(),
				"expands":    expandsProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listAutomationSourcesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListAutomationSources(ctx, req.ProjectID, client.AutomationSourceFilter{
			IsRetired: req.IsRetired,
			Page:      req.Page,
			PerPage:   req.PerPage,
			Expands:   req.Expands,
		})
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_automation_source",
		Description: "Get details of a specific automation source.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"automation_source_id": intSchema("The automation source ID"),
				"expands":              expandsProperty(),
			},
			Required: []string{"automation_source_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getAutomationSourceRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetAutomationSource(ctx, req.AutomationSourceID, req.Expands)
	})

	r.register(mcp.Tool{
		Name: "testmo_list_automation_runs",
		Description: `List automation runs in a project with optional filters.

Automation runs represent CI/CD test execution results. Filter by:
- source_id: Automation source IDs (comma-separated)
- milestone_id: Milestone IDs (comma-separated)
- status: Run status (2=Success, 3=Failure, 4=Running)
- created_after/before: Date range (ISO8601 format)`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":     intSchema("The project ID"),
				"source_id":      stringSchema("Comma-separated automation source IDs to filter by"),
				"milestone_id":   stringSchema("Comma-separated milestone IDs to filter by"),
				"status":         stringSchema("Comma-separated status values (2=Success, 3=Failure, 4=Running)"),
				"created_after":  stringSchema("Filter runs created after (ISO8601 format)"),
				"created_before": stringSchema("Filter runs created before (ISO8601 format)"),
				"tags":           stringSchema("Comma-separated tags to filter by"),
				"page":           pageProperty(),
				"per_page":       perPageProperty(),
				"expands":        expandsProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listAutomationRunsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListAutomationRuns(ctx, req.ProjectID, client.AutomationRunFilter{
			SourceID:      req.SourceID,
			MilestoneID:   req.MilestoneID,
			Status:        req.Status,
			CreatedAfter:  req.CreatedAfter,
			CreatedBefore: req.CreatedBefore,
			Tags:          req.Tags,
			Page:          req.Page,
			PerPage:       req.PerPage,
			Expands:       req.Expands,
		})
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_automation_run",
		Description: "Get details of a specific automation run.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"automation_run_id": intSchema("The automation run ID"),
				"expands":           expandsProperty(),
			},
			Required: []string{"automation_run_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getAutomationRunRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetAutomationRun(ctx, req.AutomationRunID, req.Expands)
	})
}
