package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// RunFilter holds the filters accepted by ListRuns. MilestoneID takes a
// comma-separated list; a nil IsClosed includes open and closed runs. Page
// and PerPage default to 1 and 100.
type RunFilter struct {
	IsClosed    *bool
	MilestoneID string
	Page        int
	PerPage     int
	Expands     []string
}

// ListRuns returns one page of test runs with the raw list envelope.
func (c *Client) ListRuns(ctx context.Context, projectID int64, filter RunFilter) (map[string]any, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = maxPerPage
	}

	q := pageQuery(filter.Page, filter.PerPage)
	if filter.IsClosed != nil {
		q.Set("is_closed", strconv.FormatBool(*filter.IsClosed))
	}
	setIfPresent(q, "milestone_id", filter.MilestoneID)
	if len(filter.Expands) > 0 {
		q.Set("expands", strings.Join(filter.Expands, ","))
	}

	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/runs", projectID), q, nil)
}

// GetRun returns a single test run.
func (c *Client) GetRun(ctx context.Context, runID int64, expands []string) (map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/runs/%d", runID), expandsQuery(expands), nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// RunResultFilter holds the filters accepted by ListRunResults. The ID
// filters take comma-separated lists; empty values are omitted from the
// query. Page and PerPage default to 1 and 100.
type RunResultFilter struct {
	StatusID      string
	AssigneeID    string
	CreatedBy     string
	CreatedAfter  string
	CreatedBefore string
	LatestOnly    bool
	Page          int
	PerPage       int
	Expands       []string
}

// ListRunResults returns one page of results recorded for a run.
func (c *Client) ListRunResults(ctx context.Context, runID int64, filter RunResultFilter) (map[string]any, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = maxPerPage
	}

	q := pageQuery(filter.Page, filter.PerPage)
	setIfPresent(q, "status_id", filter.StatusID)
	setIfPresent(q, "assignee_id", filter.AssigneeID)
	setIfPresent(q, "created_by", filter.CreatedBy)
	setIfPresent(q, "created_after", filter.CreatedAfter)
	setIfPresent(q, "created_before", filter.CreatedBefore)
	if filter.LatestOnly {
		q.Set("get_latest_result", "true")
	}
	if len(filter.Expands) > 0 {
		q.Set("expands", strings.Join(filter.Expands, ","))
	}

	return c.send(ctx, http.MethodGet, fmt.Sprintf("/runs/%d/results", runID), q, nil)
}
