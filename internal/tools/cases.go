package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listCasesRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	FolderID  int64 `mapstructure:"folder_id"`
	Page      int   `mapstructure:"page"`
	PerPage   int   `mapstructure:"per_page"`
}

func (r *listCasesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type getAllCasesRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	FolderID  int64 `mapstructure:"folder_id"`
}

func (r *getAllCasesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return nil
}

type caseRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	CaseID    int64 `mapstructure:"case_id"`
}

func (r *caseRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.CaseID <= 0 {
		return &client.ValidationError{Message: "case_id is required"}
	}
	return nil
}

type createCaseRequest struct {
	ProjectID int64          `mapstructure:"project_id"`
	CaseData  map[string]any `mapstructure:"case_data"`
}

func (r *createCaseRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if len(r.CaseData) == 0 {
		return &client.ValidationError{Message: "case_data is required"}
	}
	return nil
}

type createCasesRequest struct {
	ProjectID int64            `mapstructure:"project_id"`
	Cases     []map[string]any `mapstructure:"cases"`
}

func (r *createCasesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if len(r.Cases) == 0 {
		return &client.ValidationError{Message: "cases is required"}
	}
	return nil
}

type updateCaseRequest struct {
	ProjectID int64          `mapstructure:"project_id"`
	CaseID    int64          `mapstructure:"case_id"`
	Data      map[string]any `mapstructure:"data"`
}

func (r *updateCaseRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.CaseID <= 0 {
		return &client.ValidationError{Message: "case_id is required"}
	}
	if len(r.Data) == 0 {
		return &client.ValidationError{Message: "data is required"}
	}
	return nil
}

type batchDeleteCasesRequest struct {
	ProjectID int64   `mapstructure:"project_id"`
	CaseIDs   []int64 `mapstructure:"case_ids"`
}

func (r *batchDeleteCasesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if len(r.CaseIDs) == 0 {
		return &client.ValidationError{Message: "case_ids is required"}
	}
	return nil
}

type searchCasesRequest struct {
	ProjectID int64    `mapstructure:"project_id"`
	Query     string   `mapstructure:"query"`
	FolderID  int64    `mapstructure:"folder_id"`
	Tags      []string `mapstructure:"tags"`
	StateID   int64    `mapstructure:"state_id"`
	Page      int      `mapstructure:"page"`
	PerPage   int      `mapstructure:"per_page"`
}

func (r *searchCasesRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

func (r *Registry) registerCaseTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_cases",
		Description: "List test cases in a project or folder. Supports pagination.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("Filter by folder ID (optional)"),
				"page":       pageProperty(),
				"per_page":   perPageProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		if req.Page <= 0 {
			req.Page = 1
		}
		if req.PerPage <= 0 {
			req.PerPage = 100
		}
		return r.client.ListCases(ctx, req.ProjectID, req.FolderID, req.Page, req.PerPage)
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_all_cases",
		Description: "Get all test cases in a folder (handles pagination automatically). Use for discovering existing test cases.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("Folder ID to get cases from (optional)"),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req getAllCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		cases, err := r.client.GetAllCases(ctx, req.ProjectID, req.FolderID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"total": len(cases),
			"cases": cases,
		}, nil
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_case",
		Description: "Get full details of a specific test case, including custom fields and Gherkin scenarios.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"case_id":    intSchema("The test case ID"),
			},
			Required: []string{"project_id", "case_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req caseRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetCase(ctx, req.ProjectID, req.CaseID)
	})

	r.register(mcp.Tool{
		Name: "testmo_create_case",
		Description: `Create a single test case in Testmo.

Use testmo_get_field_mappings to look up valid values for custom fields
(priority, type, state, configurations, tags) before creating cases.`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"case_data":  objectSchema("Test case data object with all required fields"),
			},
			Required: []string{"project_id", "case_data"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req createCaseRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.CreateCase(ctx, req.ProjectID, req.CaseData)
	})

	r.register(mcp.Tool{
		Name:        "testmo_create_cases",
		Description: "Create multiple test cases in a batch (max 100 per call).",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"cases":      arraySchema("Array of test case objects (max 100)", "object"),
			},
			Required: []string{"project_id", "cases"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req createCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.CreateCases(ctx, req.ProjectID, req.Cases)
	})

	r.register(mcp.Tool{
		Name:        "testmo_batch_create_cases",
		Description: "Create any number of test cases, automatically handling batching (100 per request).",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"cases":      arraySchema("Array of test case objects", "object"),
			},
			Required: []string{"project_id", "cases"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req createCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.BatchCreateCases(ctx, req.ProjectID, req.Cases)
	})

	r.register(mcp.Tool{
		Name:        "testmo_update_case",
		Description: "Update an existing test case. Only include fields you want to change.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"case_id":    intSchema("The test case ID to update"),
				"data":       objectSchema("Fields to update"),
			},
			Required: []string{"project_id", "case_id", "data"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req updateCaseRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.UpdateCase(ctx, req.ProjectID, req.CaseID, req.Data)
	})

	r.register(mcp.Tool{
		Name:        "testmo_delete_case",
		Description: "Delete a test case.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"case_id":    intSchema("The test case ID to delete"),
			},
			Required: []string{"project_id", "case_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req caseRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.DeleteCase(ctx, req.ProjectID, req.CaseID)
	})

	r.register(mcp.Tool{
		Name:        "testmo_batch_delete_cases",
		Description: "Delete multiple test cases.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"case_ids":   arraySchema("Array of test case IDs to delete", "integer"),
			},
			Required: []string{"project_id", "case_ids"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req batchDeleteCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.BatchDeleteCases(ctx, req.ProjectID, req.CaseIDs)
	})

	r.register(mcp.Tool{
		Name:        "testmo_search_cases",
		Description: "Search for test cases with filters (query, folder, tags, state).",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"query":      stringSchema("Search query (searches name and description)"),
				"folder_id":  intSchema("Filter by folder ID"),
				"tags":       arraySchema("Filter by tags", "string"),
				"state_id":   intSchema("Filter by state (1=Draft, 2=Review, 3=Approved, 4=Active, 5=Deprecated)"),
				"page":       pageProperty(),
				"per_page":   perPageProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req searchCasesRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.SearchCases(ctx, req.ProjectID, client.CaseSearch{
			Query:    req.Query,
			FolderID: req.FolderID,
			Tags:     req.Tags,
			StateID:  req.StateID,
			Page:     req.Page,
			PerPage:  req.PerPage,
		})
	})
}
