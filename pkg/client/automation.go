package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// AutomationRunFilter holds the filters accepted by ListAutomationRuns. The
// ID and status filters take comma-separated lists; empty values are omitted
// from the query. Page and PerPage default to 1 and 100.
type AutomationRunFilter struct {
	SourceID      string
	MilestoneID   string
	Status        string
	CreatedAfter  string
	CreatedBefore string
	Tags          string
	Page          int
	PerPage       int
	Expands       []string
}

// ListAutomationRuns returns one page of automation runs (CI/CD test
// executions) for a project.
func (c *Client) ListAutomationRuns(ctx context.Context, projectID int64, filter AutomationRunFilter) (map[string]any, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = maxPerPage
	}

	q := pageQuery(filter.Page, filter.PerPage)
	setIfPresent(q, "source_id", filter.SourceID)
	setIfPresent(q, "milestone_id", filter.MilestoneID)
	setIfPresent(q, "status", filter.Status)
	setIfPresent(q, "created_after", filter.CreatedAfter)
	setIfPresent(q, "created_before", filter.CreatedBefore)
	setIfPresent(q, "tags", filter.Tags)
	if len(filter.Expands) > 0 {
		q.Set("expands", strings.Join(filter.Expands, ","))
	}

	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/automation/runs", projectID), q, nil)
}

// GetAutomationRun returns a single automation run.
func (c *Client) GetAutomationRun(ctx context.Context, automationRunID int64, expands []string) (map[string]any, error) {
	q := expandsQuery(expands)
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/automation/runs/%d", automationRunID), q, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// AutomationSourceFilter holds the filters accepted by
// ListAutomationSources. A nil IsRetired leaves retired and active sources
// both included.
type AutomationSourceFilter struct {
	IsRetired *bool
	Page      int
	PerPage   int
	Expands   []string
}

// ListAutomationSources returns one page of automation sources (CI/CD
// integrations) for a project.
func (c *Client) ListAutomationSources(ctx context.Context, projectID int64, filter AutomationSourceFilter) (map[string]any, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = maxPerPage
	}

	q := pageQuery(filter.Page, filter.PerPage)
	if filter.IsRetired != nil {
		q.Set("is_retired", strconv.FormatBool(*filter.IsRetired))
	}
	if len(filter.Expands) > 0 {
		q.Set("expands", strings.Join(filter.Expands, ","))
	}

	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/automation/sources", projectID), q, nil)
}

// GetAutomationSource returns a single automation source.
func (c *Client) GetAutomationSource(ctx context.Context, automationSourceID int64, expands []string) (map[string]any, error) {
	q := expandsQuery(expands)
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/automation/sources/%d", automationSourceID), q, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}
