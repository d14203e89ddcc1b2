package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
)

// ListCaseAttachments returns one page of attachments for a test case.
func (c *Client) ListCaseAttachments(ctx context.Context, caseID int64, page, perPage int, expands []string) (map[string]any, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = maxPerPage
	}

	q := pageQuery(page, perPage)
	if len(expands) > 0 {
		q.Set("expands", strings.Join(expands, ","))
	}

	return c.send(ctx, http.MethodGet,
		fmt.Sprintf("/attachments/cases/%d", caseID), q, nil)
}

// UploadCaseAttachment decodes base64 content and uploads it to a test case
// as a multipart form file. Invalid base64 is rejected before any request is
// sent. An empty contentType defaults to application/octet-stream.
func (c *Client) UploadCaseAttachment(ctx context.Context, caseID int64, filename, contentBase64, contentType string) (map[string]any, error) {
	data, err := base64.StdEncoding.DecodeString(contentBase64)
	if err != nil {
		testmoErrorsTotal.WithLabelValues(string(ErrorClassValidation)).Inc()
		return nil, &ValidationError{Message: fmt.Sprintf(
			"invalid base64 content for %q: %v", filename, err)}
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return c.sendUpload(ctx, fmt.Sprintf("/attachments/cases/%d", caseID),
		filename, contentType, data)
}

// DeleteCaseAttachments deletes attachments one at a time, pacing
// consecutive deletes, and reports which deletions succeeded. A failed
// deletion is recorded and the run continues with the next attachment.
func (c *Client) DeleteCaseAttachments(ctx context.Context, caseID int64, attachmentIDs []int64) (map[string]any, error) {
	deleted := make([]int64, 0, len(attachmentIDs))
	var errs []string

	pacer := c.pacer()
	for _, attachmentID := range attachmentIDs {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		_, err := c.send(ctx, http.MethodDelete,
			fmt.Sprintf("/attachments/%d", attachmentID), nil, nil)
		if err != nil {
			errs = append(errs, fmt.Sprintf("Attachment %d: %s", attachmentID, shortErrorMessage(err)))
			continue
		}
		deleted = append(deleted, attachmentID)
	}

	c.logger.Info().
		Int64("case_id", caseID).
		Int("deleted", len(deleted)).
		Int("failed", len(errs)).
		Msg("Attachment deletion complete")

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
