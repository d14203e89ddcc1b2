package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListProjects returns all projects visible to the API key.
func (c *Client) ListProjects(ctx context.Context) ([]map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet, "/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	return resultList(resp), nil
}

// GetProject returns a single project.
func (c *Client) GetProject(ctx context.Context, projectID int64) (map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", projectID), nil, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}
