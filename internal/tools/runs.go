package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listRunsRequest struct {
	ProjectID   int64    `mapstructure:"project_id"`
	IsClosed    *bool    `mapstructure:"is_closed"`
	MilestoneID string   `mapstructure:"milestone_id"`
	Page        int      `mapstructure:"page"`
	PerPage     int      `mapstructure:"per_page"`
	Expands     []string `mapstructure:"expands"`
}

func (r *listRunsRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type getRunRequest struct {
	RunID   int64    `mapstructure:"run_id"`
	Expands []string `mapstructure:"expands"`
}

func (r *getRunRequest) Validate() error {
	if r.RunID <= 0 {
		return &client.ValidationError{Message: "run_id is required"}
	}
	return nil
}

type listRunResultsRequest struct {
	RunID           int64    `mapstructure:"run_id"`
	StatusID        string   `mapstructure:"status_id"`
	AssigneeID      string   `mapstructure:"assignee_id"`
	CreatedBy       string   `mapstructure:"created_by"`
	CreatedAfter    string   `mapstructure:"created_after"`
	CreatedBefore   string   `mapstructure:"created_before"`
	GetLatestResult bool     `mapstructure:"get_latest_result"`
	Page            int      `mapstructure:"page"`
	PerPage         int      `mapstructure:"per_page"`
	Expands         []string `mapstructure:"expands"`
}

func (r *listRunResultsRequest) Validate() error {
	if r.RunID <= 0 {
		return &client.ValidationError{Message: "run_id is required"}
	}
	return validatePerPage(r.PerPage)
}

func (r *Registry) registerRunTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_runs",
		Description: "List test runs in a project.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":   intSchema("The project ID"),
				"is_closed":    boolSchema("Filter by closed status (optional)"),
				"milestone_id": stringSchema("Comma-separated milestone IDs to filter by"),
				"page":         pageProperty(),
				"per_page":     perPageProperty(),
				"expands":      expandsProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listRunsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListRuns(ctx, req.ProjectID, client.RunFilter{
			IsClosed:    req.IsClosed,
			MilestoneID: req.MilestoneID,
			Page:        req.Page,
			PerPage:     req.PerPage,
			Expands:     req.Expands,
		})
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_run",
		Description: "Get details of a specific test run.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"run_id":  intSchema("The test run ID"),
				"expands": expandsProperty(),
			},
			Required: []string{"run_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getRunRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetRun(ctx, req.RunID, req.Expands)
	})

	r.register(mcp.Tool{
		Name: "testmo_list_run_results",
		Description: `List test results for a run with optional filters.

Supports filtering by status, assignee, and date range:
- status_id: Filter by result status (1=Untested, 2=Passed, 3=Failed, 4=Retest, 5=Blocked, 6=Skipped)
- assignee_id: Filter by assigned user IDs (comma-separated)
- get_latest_result: If true, return only the latest result per test`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"run_id":            intSchema("The test run ID"),
				"status_id":         stringSchema("Comma-separated status IDs (1=Untested, 2=Passed, 3=Failed, 4=Retest, 5=Blocked, 6=Skipped)"),
				"assignee_id":       stringSchema("Comma-separated assignee IDs to filter by"),
				"created_by":        stringSchema("Comma-separated user IDs who created results"),
				"created_after":     stringSchema("Filter results created after (ISO8601 format)"),
				"created_before":    stringSchema("Filter results created before (ISO8601 format)"),
				"get_latest_result": boolSchema("If true, return only the latest result per test"),
				"page":              pageProperty(),
				"per_page":          perPageProperty(),
				"expands":           expandsProperty(),
			},
			Required: []string{"run_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listRunResultsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListRunResults(ctx, req.RunID, client.RunResultFilter{
			StatusID:      req.StatusID,
			AssigneeID:    req.AssigneeID,
			CreatedBy:     req.CreatedBy,
			CreatedAfter:  req.CreatedAfter,
			CreatedBefore: req.CreatedBefore,
			LatestOnly:    req.GetLatestResult,
			Page:          req.Page,
			PerPage:       req.PerPage,
			Expands:       req.Expands,
		})
	})
}
