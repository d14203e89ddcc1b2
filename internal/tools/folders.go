package tools

import (
	"context"
	"fmt"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listFoldersRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	Page      int   `mapstructure:"page"`
	PerPage   int   `mapstructure:"per_page"`
}

func (r *listFoldersRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type folderRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	FolderID  int64 `mapstructure:"folder_id"`
}

func (r *folderRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.FolderID <= 0 {
		return &client.ValidationError{Message: "folder_id is required"}
	}
	return nil
}

type createFolderRequest struct {
	ProjectID int64  `mapstructure:"project_id"`
	Name      string `mapstructure:"name"`
	ParentID  int64  `mapstructure:"parent_id"`
}

func (r *createFolderRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.Name == "" {
		return &client.ValidationError{Message: "name is required"}
	}
	return nil
}

type updateFolderRequest struct {
	ProjectID int64   `mapstructure:"project_id"`
	FolderID  int64   `mapstructure:"folder_id"`
	Name      *string `mapstructure:"name"`
	ParentID  *int64  `mapstructure:"parent_id"`
}

func (r *updateFolderRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.FolderID <= 0 {
		return &client.ValidationError{Message: "folder_id is required"}
	}
	if r.Name == nil && r.ParentID == nil {
		return &client.ValidationError{Message: "nothing to update: provide name or parent_id"}
	}
	return nil
}

type findFolderRequest struct {
	ProjectID int64  `mapstructure:"project_id"`
	Name      string `mapstructure:"name"`
	ParentID  int64  `mapstructure:"parent_id"`
}

func (r *findFolderRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.Name == "" {
		return &client.ValidationError{Message: "name is required"}
	}
	return nil
}

func (r *Registry) registerFolderTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_folders",
		Description: "List one page of folders in a Testmo project. Returns the raw page envelope; use testmo_get_all_folders for the complete hierarchy.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"page":       pageProperty(),
				"per_page":   perPageProperty(),
			},
			Required: []string{"project_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listFoldersRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		if req.Page <= 0 {
			req.Page = 1
		}
		if req.PerPage <= 0 {
			req.PerPage = 100
		}
		return r.client.ListFolders(ctx, req.ProjectID, req.Page, req.PerPage)
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_all_folders",
		Description: "Get every folder in a Testmo project (handles pagination automatically). Each folder is annotated with its full_path for easier reading.",
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
		folders, err := r.client.GetAllFolders(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		folderMap := buildFolderMap(folders)
		for _, folder := range folders {
			folder["full_path"] = folderPath(client.AsInt64(folder["id"]), folderMap)
		}
		return folders, nil
	})

	r.register(mcp.Tool{
		Name:        "testmo_get_folder",
		Description: "Get details of a specific folder.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("The folder ID"),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req folderRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.GetFolder(ctx, req.ProjectID, req.FolderID)
	})

	r.register(mcp.Tool{
		Name:        "testmo_create_folder",
		Description: "Create a new folder in a Testmo project.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"name":       stringSchema("Folder name"),
				"parent_id":  intSchema("Parent folder ID (optional, omit for root level)"),
			},
			Required: []string{"project_id", "name"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req createFolderRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.CreateFolder(ctx, req.ProjectID, req.Name, req.ParentID)
	})

	r.register(mcp.Tool{
		Name:        "testmo_update_folder",
		Description: "Update a folder's name or parent.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("The folder ID to update"),
				"name":       stringSchema("New folder name (optional)"),
				"parent_id":  intSchema("New parent folder ID (optional)"),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req updateFolderRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		updates := map[string]any{}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.ParentID != nil {
			updates["parent_id"] = *req.ParentID
		}
		return r.client.UpdateFolder(ctx, req.ProjectID, req.FolderID, updates)
	})

	r.register(mcp.Tool{
		Name:        "testmo_delete_folder",
		Description: "Delete a folder from a project. WARNING: This will also delete all test cases in the folder.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("The folder ID to delete"),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req folderRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.DeleteFolder(ctx, req.ProjectID, req.FolderID)
	})

	r.register(mcp.Tool{
		Name:        "testmo_find_folder_by_name",
		Description: "Find a folder by its name within a project.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"name":       stringSchema("Folder name to search for"),
				"parent_id":  intSchema("Parent folder ID to search within (optional, omit for root level)"),
			},
			Required: []string{"project_id", "name"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req findFolderRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		folder, err := r.client.FindFolderByName(ctx, req.ProjectID, req.Name, req.ParentID)
		if err != nil {
			return nil, err
		}
		if folder == nil {
			return map[string]any{
				"found":   false,
				"message": fmt.Sprintf("Folder '%s' not found", req.Name),
			}, nil
		}
		return folder, nil
	})
}
