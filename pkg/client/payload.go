package client

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"testmo-mcp-server/pkg/pagination"
)

// The Testmo API wraps list responses in an envelope:
//
//	{"result": [...], "next_page": 2, ...}
//
// and single objects in {"result": {...}}. Payloads stay opaque maps so new
// API fields pass through untouched.

// resultList extracts the result array from a list envelope.
func resultList(resp map[string]any) []map[string]any {
	raw, ok := resp["result"].([]any)
	if !ok {
		return []map[string]any{}
	}
	items := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

// resultObject extracts the result object from an envelope, falling back to
// the envelope itself when the API returned the object bare.
func resultObject(resp map[string]any) map[string]any {
	if m, ok := resp["result"].(map[string]any); ok {
		return m
	}
	return resp
}

// hasNextPage reports whether a list envelope announces a following page.
// Absent and null next_page both mean the listing is complete.
func hasNextPage(resp map[string]any) bool {
	v, ok := resp["next_page"]
	return ok && v != nil
}

// pageFromEnvelope converts a list envelope into a pagination page.
func pageFromEnvelope(resp map[string]any, current int) pagination.Page {
	p := pagination.Page{Items: resultList(resp)}
	if hasNextPage(resp) {
		next := current + 1
		p.Next = &next
	}
	return p
}

// pageQuery builds the pagination query parameters shared by list endpoints.
func pageQuery(page, perPage int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

// setIfPresent sets a query parameter only when the value is non-empty.
func setIfPresent(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// expandsQuery builds a query carrying only an expands list, or nil when
// there is nothing to expand.
func expandsQuery(expands []string) url.Values {
	if len(expands) == 0 {
		return nil
	}
	q := url.Values{}
	q.Set("expands", strings.Join(expands, ","))
	return q
}

// AsInt64 converts a decoded JSON value to int64. Null, missing and
// non-numeric values convert to 0, matching how Testmo payloads treat a
// null parent_id as the root level.
func AsInt64(v any) int64 {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return int64(f)
		}
		return 0
	case float64:
		return int64(n)
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
