package tools

// Composite tools collapse multi-step folder-tree operations into one call
// so an assistant does not have to walk the hierarchy itself. All tree logic
// runs on one folder listing fetched up front; only case collection issues
// further requests, paced like every other multi-request operation.

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"testmo-mcp-server/internal/mcp"
	"testmo-mcp-server/pkg/client"
	"testmo-mcp-server/pkg/ratelimit"
)

type folderTreeRequest struct {
	ProjectID int64 `mapstructure:"project_id"`
	FolderID  int64 `mapstructure:"folder_id"`
}

func (r *folderTreeRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.FolderID <= 0 {
		return &client.ValidationError{Message: "folder_id is required"}
	}
	return nil
}

type casesRecursiveRequest struct {
	ProjectID         int64 `mapstructure:"project_id"`
	FolderID          int64 `mapstructure:"folder_id"`
	IncludeFolderPath *bool `mapstructure:"include_folder_path"`
}

func (r *casesRecursiveRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.FolderID <= 0 {
		return &client.ValidationError{Message: "folder_id is required"}
	}
	return nil
}

type searchRecursiveRequest struct {
	ProjectID     int64          `mapstructure:"project_id"`
	FolderID      int64          `mapstructure:"folder_id"`
	Query         string         `mapstructure:"query"`
	Tags          []string       `mapstructure:"tags"`
	StateID       int64          `mapstructure:"state_id"`
	CustomFilters map[string]any `mapstructure:"custom_filters"`
}

func (r *searchRecursiveRequest) Validate() error {
	if r.ProjectID <= 0 {
		return &client.ValidationError{Message: "project_id is required"}
	}
	if r.FolderID <= 0 {
		return &client.ValidationError{Message: "folder_id is required"}
	}
	return nil
}

// buildFolderMap indexes folders by ID.
func buildFolderMap(folders []map[string]any) map[int64]map[string]any {
	m := make(map[int64]map[string]any, len(folders))
	for _, f := range folders {
		m[client.AsInt64(f["id"])] = f
	}
	return m
}

// collectSubtree returns the IDs of the subtree rooted at rootID, the root
// included. A null parent_id and parent 0 both mean the root level.
func collectSubtree(folders []map[string]any, rootID int64) map[int64]bool {
	children := make(map[int64][]int64)
	for _, f := range folders {
		parent := client.AsInt64(f["parent_id"])
		children[parent] = append(children[parent], client.AsInt64(f["id"]))
	}

	subtree := map[int64]bool{rootID: true}
	stack := []int64{rootID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, childID := range children[current] {
			subtree[childID] = true
			stack = append(stack, childID)
		}
	}
	return subtree
}

// sortedIDs returns the set members in ascending order.
func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// folderPath builds the " / "-joined path of a folder by walking the parent
// chain. An unknown folder yields an empty path.
func folderPath(folderID int64, folderMap map[int64]map[string]any) string {
	folder, ok := folderMap[folderID]
	if !ok {
		return ""
	}
	parts := []string{fmt.Sprint(folder["name"])}
	parentID := client.AsInt64(folder["parent_id"])
	for parentID != 0 {
		parent, ok := folderMap[parentID]
		if !ok {
			break
		}
		parts = append([]string{fmt.Sprint(parent["name"])}, parts...)
		parentID = client.AsInt64(parent["parent_id"])
	}
	return strings.Join(parts, " / ")
}

// buildFolderTree nests the subtree folders under the root, annotating each
// node with its full_path and children. Returns nil for an unknown root.
func buildFolderTree(folders []map[string]any, subtree map[int64]bool, rootID int64, folderMap map[int64]map[string]any) map[string]any {
	children := make(map[int64][]map[string]any)
	for _, f := range folders {
		id := client.AsInt64(f["id"])
		if !subtree[id] {
			continue
		}
		parent := client.AsInt64(f["parent_id"])
		children[parent] = append(children[parent], f)
	}

	var buildNode func(folder map[string]any) map[string]any
	buildNode = func(folder map[string]any) map[string]any {
		id := client.AsInt64(folder["id"])
		node := make(map[string]any, len(folder)+2)
		for k, v := range folder {
			node[k] = v
		}
		node["full_path"] = folderPath(id, folderMap)
		childNodes := make([]map[string]any, 0, len(children[id]))
		for _, child := range children[id] {
			childNodes = append(childNodes, buildNode(child))
		}
		node["children"] = childNodes
		return node
	}

	root, ok := folderMap[rootID]
	if !ok {
		return nil
	}
	return buildNode(root)
}

// normalizeValue converts a decoded JSON value so numbers compare across
// json.Number, float64 and integer representations.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i
		}
		if f, err := n.Float64(); err == nil {
			return f
		}
		return n.String()
	case float64:
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	case int:
		return int64(n)
	case int64:
		return n
	default:
		return v
	}
}

// matchesFilters reports whether a case satisfies every custom filter by
// equality on the normalized values.
func matchesFilters(c map[string]any, filters map[string]any) bool {
	for key, want := range filters {
		if !reflect.DeepEqual(normalizeValue(c[key]), normalizeValue(want)) {
			return false
		}
	}
	return true
}

// folderNotFound is the in-band result for a root folder outside the
// project. The original surface reports this as data, not as a tool error.
func folderNotFound(folderID, projectID int64) map[string]any {
	return map[string]any{
		"error": fmt.Sprintf("Folder %d not found in project %d", folderID, projectID),
	}
}

func (r *Registry) registerCompositeTools() {
	r.register(mcp.Tool{
		Name: "testmo_get_folders_recursive",
		Description: "Get a folder and all its descendant subfolders as a nested tree. " +
			"Returns the complete folder hierarchy under the given folder ID in a " +
			"single call, avoiding multiple round-trips.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("The root folder ID to start recursion from"),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req folderTreeRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}

		folders, err := r.client.GetAllFolders(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		folderMap := buildFolderMap(folders)
		if _, ok := folderMap[req.FolderID]; !ok {
			return folderNotFound(req.FolderID, req.ProjectID), nil
		}

		subtree := collectSubtree(folders, req.FolderID)
		return map[string]any{
			"total_folders": len(subtree),
			"tree":          buildFolderTree(folders, subtree, req.FolderID, folderMap),
		}, nil
	})

	r.register(mcp.Tool{
		Name: "testmo_get_cases_recursive",
		Description: "Get all test cases from a folder and all its subfolders in a single call. " +
			"Returns a flat list of cases annotated with folder name and path. " +
			"Includes per-folder case counts in the summary.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id":          intSchema("The project ID"),
				"folder_id":           intSchema("The root folder ID to collect cases from recursively"),
				"include_folder_path": boolSchema("Include folder path on each case (default: true)"),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req casesRecursiveRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}
		includePath := req.IncludeFolderPath == nil || *req.IncludeFolderPath

		folders, err := r.client.GetAllFolders(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		folderMap := buildFolderMap(folders)
		if _, ok := folderMap[req.FolderID]; !ok {
			return folderNotFound(req.FolderID, req.ProjectID), nil
		}

		subtree := collectSubtree(folders, req.FolderID)
		allCases := make([]map[string]any, 0)
		folderSummary := make([]map[string]any, 0)

		pacer := ratelimit.NewPacer(r.client.PageDelay())
		for _, fid := range sortedIDs(subtree) {
			if err := pacer.Wait(ctx); err != nil {
				return nil, err
			}
			cases, err := r.client.GetAllCases(ctx, req.ProjectID, fid)
			if err != nil {
				return nil, err
			}

			folderName := fmt.Sprint(fid)
			if folder, ok := folderMap[fid]; ok {
				folderName = fmt.Sprint(folder["name"])
			}
			var path string
			if includePath {
				path = folderPath(fid, folderMap)
			}

			if len(cases) > 0 {
				summary := map[string]any{
					"folder_id":   fid,
					"folder_name": folderName,
					"case_count":  len(cases),
				}
				if includePath {
					summary["folder_path"] = path
				}
				folderSummary = append(folderSummary, summary)
			}

			for _, c := range cases {
				c["_folder_name"] = folderName
				if includePath {
					c["_folder_path"] = path
				}
				allCases = append(allCases, c)
			}
		}

		return map[string]any{
			"total_cases":            len(allCases),
			"total_folders_searched": len(subtree),
			"folder_summary":         folderSummary,
			"cases":                  allCases,
		}, nil
	})

	r.register(mcp.Tool{
		Name: "testmo_search_cases_recursive",
		Description: "Search for test cases recursively within a folder and all its subfolders. " +
			"Supports API-level filters (query, tags, state_id) plus client-side " +
			"custom_filters for matching on any case property (e.g., custom_priority, " +
			"custom_type, configurations). Returns matching cases with folder context.",
		InputSchema: mcp.JSONSchema{
			Type: "object",
			Properties: map[string]any{
				"project_id": intSchema("The project ID"),
				"folder_id":  intSchema("The root folder ID to search recursively within"),
				"query":      stringSchema("Search query (searches name and description)"),
				"tags":       arraySchema("Filter by tags", "string"),
				"state_id":   intSchema("Filter by state (1=Draft, 2=Review, 3=Approved, 4=Active, 5=Deprecated)"),
				"custom_filters": objectSchema("Key-value pairs to match on case properties. " +
					`Example: {"custom_priority": 1, "custom_type": 59}`),
			},
			Required: []string{"project_id", "folder_id"},
		},
	}, func(ctx context.Context, args map[string]any) (any, error) {
		var req searchRecursiveRequest
		if err := decodeArgs(args, &req); err != nil {
			return nil, err
		}

		folders, err := r.client.GetAllFolders(ctx, req.ProjectID)
		if err != nil {
			return nil, err
		}
		folderMap := buildFolderMap(folders)
		if _, ok := folderMap[req.FolderID]; !ok {
			return folderNotFound(req.FolderID, req.ProjectID), nil
		}

		subtree := collectSubtree(folders, req.FolderID)
		allMatches := make([]map[string]any, 0)
		folderSummary := make([]map[string]any, 0)

		pacer := ratelimit.NewPacer(r.client.PageDelay())
		for _, fid := range sortedIDs(subtree) {
			folderCases, err := r.searchFolderCases(ctx, pacer, req, fid)
			if err != nil {
				return nil, err
			}

			if len(req.CustomFilters) > 0 {
				filtered := folderCases[:0]
				for _, c := range folderCases {
					if matchesFilters(c, req.CustomFilters) {
						filtered = append(filtered, c)
					}
				}
				folderCases = filtered
			}

			folderName := fmt.Sprint(fid)
			if folder, ok := folderMap[fid]; ok {
				folderName = fmt.Sprint(folder["name"])
			}
			path := folderPath(fid, folderMap)

			if len(folderCases) > 0 {
				folderSummary = append(folderSummary, map[string]any{
					"folder_id":   fid,
					"folder_name": folderName,
					"folder_path": path,
					"match_count": len(folderCases),
				})
			}

			for _, c := range folderCases {
				c["_folder_name"] = folderName
				c["_folder_path"] = path
				allMatches = append(allMatches, c)
			}
		}

		return map[string]any{
			"total_matches":          len(allMatches),
			"total_folders_searched": len(subtree),
			"folder_summary":         folderSummary,
			"cases":                  allMatches,
		}, nil
	})
}

// searchFolderCases collects every search result page for one folder,
// pacing consecutive requests with the shared pacer.
func (r *Registry) searchFolderCases(ctx context.Context, pacer *ratelimit.Pacer, req searchRecursiveRequest, folderID int64) ([]map[string]any, error) {
	cases := make([]map[string]any, 0)
	page := 1
	for {
		if err := pacer.Wait(ctx); err != nil {
			return nil, err
		}
		resp, err := r.client.SearchCases(ctx, req.ProjectID, client.CaseSearch{
			Query:    req.Query,
			FolderID: folderID,
			Tags:     req.Tags,
			StateID:  req.StateID,
			Page:     page,
		})
		if err != nil {
			return nil, err
		}

		cases = append(cases, casesFromEnvelope(resp)...)
		if next, ok := resp["next_page"]; !ok || next == nil {
			return cases, nil
		}
		page++
	}
}

// casesFromEnvelope extracts the result items from a list envelope.
func casesFromEnvelope(resp map[string]any) []map[string]any {
	raw, ok := resp["result"].([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}
