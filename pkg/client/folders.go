package client

import (
	"context"
	"fmt"
	"net/http"

	"testmo-mcp-server/pkg/pagination"
)

// ListFolders returns one page of case folders with the raw list envelope.
func (c *Client) ListFolders(ctx context.Context, projectID int64, page, perPage int) (map[string]any, error) {
	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/folders", projectID), pageQuery(page, perPage), nil)
}

// GetAllFolders returns every folder in a project, walking all pages.
func (c *Client) GetAllFolders(ctx context.Context, projectID int64) ([]map[string]any, error) {
	return pagination.Collect(ctx, c.config.PageDelay, func(ctx context.Context, page int) (pagination.Page, error) {
		resp, err := c.ListFolders(ctx, projectID, page, maxPerPage)
		if err != nil {
			return pagination.Page{}, err
		}
		return pageFromEnvelope(resp, page), nil
	})
}

// GetFolder returns a single folder.
func (c *Client) GetFolder(ctx context.Context, projectID, folderID int64) (map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/folders/%d", projectID, folderID), nil, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// CreateFolder creates a folder. A zero parentID creates at the root level.
func (c *Client) CreateFolder(ctx context.Context, projectID int64, name string, parentID int64) (map[string]any, error) {
	body := map[string]any{"name": name}
	if parentID != 0 {
		body["parent_id"] = parentID
	}
	resp, err := c.send(ctx, http.MethodPost,
		fmt.Sprintf("/projects/%d/folders", projectID), nil, body)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// UpdateFolder applies partial updates to a folder. Only the fields present
// in updates are sent.
func (c *Client) UpdateFolder(ctx context.Context, projectID, folderID int64, updates map[string]any) (map[string]any, error) {
	if updates == nil {
		updates = map[string]any{}
	}
	resp, err := c.send(ctx, http.MethodPut,
		fmt.Sprintf("/projects/%d/folders/%d", projectID, folderID), nil, updates)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// DeleteFolder deletes a folder.
func (c *Client) DeleteFolder(ctx context.Context, projectID, folderID int64) (map[string]any, error) {
	return c.send(ctx, http.MethodDelete,
		fmt.Sprintf("/projects/%d/folders/%d", projectID, folderID), nil, nil)
}

// FindFolderByName returns the folder whose name exactly matches name
// directly under parentID, or nil when no folder matches. A zero parentID
// means root level; folders with a null parent_id live at the root.
func (c *Client) FindFolderByName(ctx context.Context, projectID int64, name string, parentID int64) (map[string]any, error) {
	folders, err := c.GetAllFolders(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		if folder["name"] == name && AsInt64(folder["parent_id"]) == parentID {
			return folder, nil
		}
	}
	return nil, nil
}
