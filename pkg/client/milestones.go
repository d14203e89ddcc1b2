package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListMilestones returns the milestones of a project.
func (c *Client) ListMilestones(ctx context.Context, projectID int64) ([]map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/milestones", projectID), nil, nil)
	if err != nil {
		return nil, err
	}
	return resultList(resp), nil
}

// GetMilestone returns a single milestone.
func (c *Client) GetMilestone(ctx context.Context, projectID, milestoneID int64) (map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/milestones/%d", projectID, milestoneID), nil, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}
