package tools

import (
	"context"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
)

type listCaseAttachmentsRequest struct {
	CaseID  int64    `mapstructure:"case_id"`
	Page    int      `mapstructure:"page"`
	PerPage int      `mapstructure:"per_page"`
	Expands []string `mapstructure:"expands"`
}

func (r *listCaseAttachmentsRequest) Validate() error {
	if r.CaseID <= 0 {
		return &client.ValidationError{Message: "case_id is required"}
	}
	return validatePerPage(r.PerPage)
}

type uploadCaseAttachmentRequest struct {
	CaseID        int64  `mapstructure:"case_id"`
	Filename      string `mapstructure:"filename"`
	ContentBase64 string `mapstructure:"content_base64"`
	ContentType   string `mapstructure:"content_type"`
}

func (r *uploadCaseAttachmentRequest) Validate() error {
	if r.CaseID <= 0 {
		return &client.ValidationError{Message: "case_id is required"}
	}
	if r.Filename == "" {
		return &client.ValidationError{Message: "filename is required"}
	}
	if r.ContentBase64 == "" {
		return &client.ValidationError{Message: "content_base64 is required"}
	}
	return nil
}

type deleteCaseAttachmentsRequest struct {
	CaseID        int64   `mapstructure:"case_id"`
	AttachmentIDs []int64 `mapstructure:"attachment_ids"`
}

func (r *deleteCaseAttachmentsRequest) Validate() error {
	if r.CaseID <= 0 {
		return &client.ValidationError{Message: "case_id is required"}
	}
	if len(r.AttachmentIDs) == 0 {
		return &client.ValidationError{Message: "attachment_ids is required"}
	}
	return nil
}

func (r *Registry) registerAttachmentTools() {
	r.register(mcp.Tool{
		Name:        "testmo_list_case_attachments",
		Description: "List all attachments for a test case.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"case_id":  intSchema("The test case ID"),
				"page":     pageProperty(),
				"per_page": perPageProperty(),
				"expands":  expandsProperty(),
			},
			Required: []string{"case_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req listCaseAttachmentsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.ListCaseAttachments(ctx, req.CaseID, req.Page, req.PerPage, req.Expands)
	})

	r.register(mcp.Tool{
		Name: "testmo_upload_case_attachment",
		Description: `Upload a single file attachment to a test case.

Provide the file content as base64-encoded string. Common content types:
- image/png, image/jpeg - Screenshots
- application/pdf - Documents
- text/plain - Log files
- application/json - JSON data`,
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"case_id":        intSchema("The test case ID"),
				"filename":       stringSchema("Name of the file (e.g., 'screenshot.png')"),
				"content_base64": stringSchema("Base64-encoded file content"),
				"content_type":   stringSchema("MIME type (default: 'application/octet-stream')"),
			},
			Required: []string{"case_id", "filename", "content_base64"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req uploadCaseAttachmentRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.UploadCaseAttachment(ctx, req.CaseID, req.Filename, req.ContentBase64, req.ContentType)
	})

	r.register(mcp.Tool{
		Name:        "testmo_delete_case_attachments",
		Description: "Delete one or more attachments from a test case.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"case_id":        intSchema("The test case ID"),
				"attachment_ids": arraySchema("Array of attachment IDs to delete", "integer"),
			},
			Required: []string{"case_id", "attachment_ids"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req deleteCaseAttachmentsRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		return r.client.DeleteCaseAttachments(ctx, req.CaseID, req.AttachmentIDs)
	})
}
