package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// IssueConnectionFilter holds the filters accepted by ListIssueConnections.
// A zero ProjectID lists connections across all projects; a nil IsActive
// includes active and inactive connections.
type IssueConnectionFilter struct {
	ProjectID       int64
	IntegrationType string
	IsActive        *bool
	Page            int
	PerPage         int
	Expands         []string
}

// ListIssueConnections returns one page of configured issue tracker
// integrations (GitHub, Jira, and similar).
func (c *Client) ListIssueConnections(ctx context.Context, filter IssueConnectionFilter) (map[string]any, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = maxPerPage
	}

	q := pageQuery(filter.Page, filter.PerPage)
	if filter.ProjectID != 0 {
		q.Set("project_id", strconv.FormatInt(filter.ProjectID, 10))
	}
	setIfPresent(q, "integration_type", filter.IntegrationType)
	if filter.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}
	if len(filter.Expands) > 0 {
		q.Set("expands", strings.Join(filter.Expands, ","))
	}

	return c.send(ctx, http.MethodGet, "/issues/connections", q, nil)
}

// GetIssueConnection returns a single issue connection.
func (c *Client) GetIssueConnection(ctx context.Context, connectionID int64, expands []string) (map[string]any, error) {
	q := expandsQuery(expands)
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/issues/connections/%d", connectionID), q, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}
