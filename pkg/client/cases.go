package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"testmo-mcp-server/pkg/batch"
	"testmo-mcp-server/pkg/pagination"
)

// ListCases returns one page of test cases with the raw list envelope. A
// zero folderID lists cases across every folder.
func (c *Client) ListCases(ctx context.Context, projectID, folderID int64, page, perPage int) (map[string]any, error) {
	q := pageQuery(page, perPage)
	if folderID != 0 {
		q.Set("folder_id", strconv.FormatInt(folderID, 10))
	}
	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/cases", projectID), q, nil)
}

// GetAllCases returns every case in a project, walking all pages. A zero
// folderID includes all folders.
func (c *Client) GetAllCases(ctx context.Context, projectID, folderID int64) ([]map[string]any, error) {
	return pagination.Collect(ctx, c.config.PageDelay, func(ctx context.Context, page int) (pagination.Page, error) {
		resp, err := c.ListCases(ctx, projectID, folderID, page, maxPerPage)
		if err != nil {
			return pagination.Page{}, err
		}
		return pageFromEnvelope(resp, page), nil
	})
}

// GetCase returns a single test case.
func (c *Client) GetCase(ctx context.Context, projectID, caseID int64) (map[string]any, error) {
	resp, err := c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/cases/%d", projectID, caseID), nil, nil)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// CreateCase creates a single test case and returns the created object.
func (c *Client) CreateCase(ctx context.Context, projectID int64, caseData map[string]any) (map[string]any, error) {
	resp, err := c.CreateCases(ctx, projectID, []map[string]any{caseData})
	if err != nil {
		return nil, err
	}
	if cases := resultList(resp); len(cases) > 0 {
		return cases[0], nil
	}
	return resp, nil
}

// CreateCases creates up to CaseBatchLimit cases in one request and returns
// the raw envelope. Larger sets are rejected before any request is sent.
func (c *Client) CreateCases(ctx context.Context, projectID int64, cases []map[string]any) (map[string]any, error) {
	if len(cases) > c.config.CaseBatchLimit {
		testmoErrorsTotal.WithLabelValues(string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Message: fmt.Sprintf(
			"too many cases: %d, max is %d; use batch_create_cases for larger batches",
			len(cases), c.config.CaseBatchLimit)}
	}
	return c.send(ctx, http.MethodPost,
		fmt.Sprintf("/projects/%d/cases", projectID), nil, map[string]any{"cases": cases})
}

// BatchCreateCases creates any number of cases by splitting them into chunks
// of at most CaseBatchLimit and submitting the chunks sequentially. Failed
// chunks are skipped; the summary reports the created cases alongside
// per-chunk error messages.
func (c *Client) BatchCreateCases(ctx context.Context, projectID int64, cases []map[string]any) (map[string]any, error) {
	created := make([]map[string]any, 0, len(cases))

	outcome, err := batch.Write(ctx, cases, c.config.CaseBatchLimit, c.config.PageDelay,
		func(ctx context.Context, chunk []map[string]any) error {
			resp, err := c.CreateCases(ctx, projectID, chunk)
			if err != nil {
				return err
			}
			created = append(created, resultList(resp)...)
			return nil
		})
	if err != nil {
		return nil, err
	}

	c.logger.Info().
		Int64("project_id", projectID).
		Int("submitted", outcome.Submitted).
		Int("created", len(created)).
		Int("failed_chunks", len(outcome.Errors)).
		Msg("Batch case creation complete")

	return map[string]any{
		"result":          created,
		"total_submitted": outcome.Submitted,
		"total_created":   len(created),
		"errors":          chunkErrorMessages(outcome.Errors),
	}, nil
}

// chunkErrorMessages renders chunk failures for the batch summary. It
// returns nil when there were none so the summary serializes errors as null.
func chunkErrorMessages(errs []*batch.ChunkError) any {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, ce := range errs {
		msgs[i] = fmt.Sprintf("Batch %d: %s", ce.Chunk, shortErrorMessage(ce.Err))
	}
	return msgs
}

// shortErrorMessage prefers the API error message over the full error chain.
func shortErrorMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// UpdateCase applies partial updates to a test case. Only the fields present
// in data are sent.
func (c *Client) UpdateCase(ctx context.Context, projectID, caseID int64, data map[string]any) (map[string]any, error) {
	if data == nil {
		data = map[string]any{}
	}
	resp, err := c.send(ctx, http.MethodPut,
		fmt.Sprintf("/projects/%d/cases/%d", projectID, caseID), nil, data)
	if err != nil {
		return nil, err
	}
	return resultObject(resp), nil
}

// DeleteCase deletes a test case.
func (c *Client) DeleteCase(ctx context.Context, projectID, caseID int64) (map[string]any, error) {
	return c.send(ctx, http.MethodDelete,
		fmt.Sprintf("/projects/%d/cases/%d", projectID, caseID), nil, nil)
}

// BatchDeleteCases deletes cases one at a time, pacing consecutive deletes,
// and reports which deletions succeeded. A failed deletion is recorded and
// the run continues with the next case.
func (c *Client) BatchDeleteCases(ctx context.Context, projectID int64, caseIDs []int64) (map[string]any, error) {
	deleted := make([]int64, 0, len(caseIDs))
	var errs []string

	pacer := c.pacer()
	for _, caseID := range caseIDs {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		if _, err := c.DeleteCase(ctx, projectID, caseID); err != nil {
			errs = append(errs, fmt.Sprintf("Case %d: %s", caseID, shortErrorMessage(err)))
			continue
		}
		deleted = append(deleted, caseID)
	}

	c.logger.Info().
		Int64("project_id", projectID).
		Int("deleted", len(deleted)).
		Int("failed", len(errs)).
		Msg("Batch case deletion complete")

	var errsValue any
	if len(errs) > 0 {
		errsValue = errs
	}
	return map[string]any{
		"deleted":       deleted,
		"total_deleted": len(deleted),
		"errors":        errsValue,
	}, nil
}

// CaseSearch holds the filters accepted by SearchCases. Zero values are
// omitted from the query; Page and PerPage default to 1 and 100.
type CaseSearch struct {
	Query    string
	FolderID int64
	Tags     []string
	StateID  int64
	Page     int
	PerPage  int
}

// SearchCases queries one page of cases matching the given filters. The
// query string searches case names and descriptions; tags combine into a
// comma-separated list.
func (c *Client) SearchCases(ctx context.Context, projectID int64, search CaseSearch) (map[string]any, error) {
	if search.Page <= 0 {
		search.Page = 1
	}
	if search.PerPage <= 0 {
		search.PerPage = maxPerPage
	}

	q := pageQuery(search.Page, search.PerPage)
	if search.Query != "" {
		q.Set("query", search.Query)
	}
	if search.FolderID != 0 {
		q.Set("folder_id", strconv.FormatInt(search.FolderID, 10))
	}
	if len(search.Tags) > 0 {
		q.Set("tags", strings.Join(search.Tags, ","))
	}
	if search.StateID != 0 {
		q.Set("state_id", strconv.FormatInt(search.StateID, 10))
	}
	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/projects/%d/cases", projectID), q, nil)
}
