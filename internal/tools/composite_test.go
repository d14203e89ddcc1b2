package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"testmo-mcp-server/internal/testutil"
)

// flatFolders is the shared six-folder fixture: two roots, one of them
// three levels deep.
func flatFolders() []map[string]any {
	return []map[string]any{
		{"id": int64(1), "name": "Root A", "parent_id": int64(0)},
		{"id": int64(2), "name": "Child A1", "parent_id": int64(1)},
		{"id": int64(3), "name": "Child A2", "parent_id": int64(1)},
		{"id": int64(4), "name": "Grandchild A1a", "parent_id": int64(2)},
		{"id": int64(5), "name": "Root B", "parent_id": int64(0)},
		{"id": int64(6), "name": "Child B1", "parent_id": int64(5)},
	}
}

const flatFoldersJSON = `[
	{"id": 1, "name": "Root A", "parent_id": null},
	{"id": 2, "name": "Child A1", "parent_id": 1},
	{"id": 3, "name": "Child A2", "parent_id": 1},
	{"id": 4, "name": "Grandchild A1a", "parent_id": 2},
	{"id": 5, "name": "Root B", "parent_id": null},
	{"id": 6, "name": "Child B1", "parent_id": 5}
]`

func TestCollectSubtree(t *testing.T) {
	tests := []struct {
		name   string
		rootID int64
		want   []int64
	}{
		{"single child", 5, []int64{5, 6}},
		{"deep subtree", 1, []int64{1, 2, 3, 4}},
		{"leaf folder", 4, []int64{4}},
		{"nonexistent folder", 999, []int64{999}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtree := collectSubtree(flatFolders(), tt.rootID)
			got := sortedIDs(subtree)
			if len(got) != len(tt.want) {
				t.Fatalf("subtree ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("subtree ids = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestFolderPath(t *testing.T) {
	folderMap := buildFolderMap(flatFolders())

	if got := folderPath(1, folderMap); got != "Root A" {
		t.Errorf("path(1) = %q, want %q", got, "Root A")
	}
	if got, want := folderPath(4, folderMap), "Root A / Child A1 / Grandchild A1a"; got != want {
		t.Errorf("path(4) = %q, want %q", got, want)
	}
	if got := folderPath(999, folderMap); got != "" {
		t.Errorf("path(999) = %q, want empty", got)
	}
}

func TestBuildFolderTree(t *testing.T) {
	folders := flatFolders()
	folderMap := buildFolderMap(folders)
	subtree := collectSubtree(folders, 1)

	tree := buildFolderTree(folders, subtree, 1, folderMap)
	if tree == nil {
		t.Fatal("tree is nil for a known root")
	}
	if tree["name"] != "Root A" {
		t.Errorf("root name = %v, want Root A", tree["name"])
	}

	children := tree["children"].([]map[string]any)
	if len(children) != 2 {
		t.Fatalf("len(children) = %d, want 2", len(children))
	}
	names := map[any]bool{children[0]["name"]: true, children[1]["name"]: true}
	if !names["Child A1"] || !names["Child A2"] {
		t.Errorf("child names = %v, want Child A1 and Child A2", names)
	}

	for _, child := range children {
		if child["name"] != "Child A1" {
			continue
		}
		grandchildren := child["children"].([]map[string]any)
		if len(grandchildren) != 1 || grandchildren[0]["name"] != "Grandchild A1a" {
			t.Errorf("grandchildren = %v, want one Grandchild A1a", grandchildren)
		}
		if got, want := grandchildren[0]["full_path"], "Root A / Child A1 / Grandchild A1a"; got != want {
			t.Errorf("grandchild full_path = %v, want %v", got, want)
		}
	}
}

func TestBuildFolderTree_MissingRoot(t *testing.T) {
	folders := flatFolders()
	folderMap := buildFolderMap(folders)
	if tree := buildFolderTree(folders, map[int64]bool{999: true}, 999, folderMap); tree != nil {
		t.Errorf("tree = %v, want nil for an unknown root", tree)
	}
}

func TestMatchesFilters_NumericRepresentations(t *testing.T) {
	testCase := map[string]any{
		"custom_priority": json.Number("1"),
		"custom_type":     json.Number("59"),
		"name":            "Login works",
	}

	if !matchesFilters(testCase, map[string]any{"custom_priority": float64(1)}) {
		t.Error("float64(1) must match json.Number(1)")
	}
	if !matchesFilters(testCase, map[string]any{"name": "Login works"}) {
		t.Error("string equality must match")
	}
	if matchesFilters(testCase, map[string]any{"custom_type": float64(57)}) {
		t.Error("mismatched number must not match")
	}
	if matchesFilters(testCase, map[string]any{"missing_key": float64(1)}) {
		t.Error("absent key must not match")
	}
}

func TestGetFoldersRecursive(t *testing.T) {
	mock := testutil.NewMockTestmo()
	defer mock.Close()
	mock.SetResponse("GET", "/projects/1/folders", testutil.NewPageResponse(flatFoldersJSON, 0))

	reg := newTestRegistry(t, mock)
	result := callTool(t, reg, "testmo_get_folders_recursive",
		map[string]any{"project_id": float64(1), "folder_id": float64(1)})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	payload := decodeResult(t, result)
	if got := payload["total_folders"].(float64); got != 4 {
		t.Errorf("total_folders = %v, want 4", got)
	}
	tree := payload["tree"].(map[string]any)
	if tree["name"] != "Root A" {
		t.Errorf("tree root = %v, want Root A", tree["name"])
	}
	if children := tree["children"].([]any); len(children) != 2 {
		t.Errorf("len(children) = %d, want 2", len(children))
	}
}

func TestGetFoldersRecursive_UnknownRoot(t *testing.T) {
	mock := testutil.NewMockTestmo()
	defer mock.Close()
	mock.SetResponse("GET", "/projects/1/folders", testutil.NewPageResponse(flatFoldersJSON, 0))

	reg := newTestRegistry(t, mock)
	result := callTool(t, reg, "testmo_get_folders_recursive",
		map[string]any{"project_id": float64(1), "folder_id": float64(999)})
	if result.IsError {
		t.Fatal("unknown root must be an in-band result, not a tool error")
	}

	payload := decodeResult(t, result)
	if payload["error"] != "Folder 999 not found in project 1" {
		t.Errorf("error = %v, want the not-found message", payload["error"])
	}
}

func TestGetCasesRecursive(t *testing.T) {
	mock := testutil.NewMockTestmo()
	defer mock.Close()
	mock.SetResponse("GET", "/projects/1/folders", testutil.NewPageResponse(flatFoldersJSON, 0))
	mock.SetHandler("GET", "/projects/1/cases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("folder_id") {
		case "5":
			fmt.Fprint(w, `{"result": [{"id": 10, "name": "B root case", "folder_id": 5}], "next_page": null}`)
		case "6":
			fmt.Fprint(w, `{"result": [{"id": 11, "name": "B1 case one", "folder_id": 6}, {"id": 12, "name": "B1 case two", "folder_id": 6}], "next_page": null}`)
		default:
			fmt.Fprint(w, `{"result": [], "next_page": null}`)
		}
	})

	reg := newTestRegistry(t, mock)
	result := callTool(t, reg, "testmo_get_cases_recursive",
		map[string]any{"project_id": float64(1), "folder_id": float64(5)})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	payload := decodeResult(t, result)
	if got := payload["total_cases"].(float64); got != 3 {
		t.Errorf("total_cases = %v, want 3", got)
	}
	if got := payload["total_folders_searched"].(float64); got != 2 {
		t.Errorf("total_folders_searched = %v, want 2", got)
	}

	summary := payload["folder_summary"].([]any)
	if len(summary) != 2 {
		t.Fatalf("len(folder_summary) = %d, want 2", len(summary))
	}

	cases := payload["cases"].([]any)
	first := cases[0].(map[string]any)
	if first["_folder_name"] != "Root B" {
		t.Errorf("_folder_name = %v, want Root B", first["_folder_name"])
	}
	last := cases[2].(map[string]any)
	if last["_folder_path"] != "Root B / Child B1" {
		t.Errorf("_folder_path = %v, want Root B / Child B1", last["_folder_path"])
	}
}

func TestSearchCasesRecursive_CustomFilters(t *testing.T) {
	mock := testutil.NewMockTestmo()
	defer mock.Close()
	mock.SetResponse("GET", "/projects/1/folders", testutil.NewPageResponse(flatFoldersJSON, 0))
	mock.SetHandler("GET", "/projects/1/cases", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("folder_id") == "4" {
			fmt.Fprint(w, `{"result": [
				{"id": 20, "name": "Critical login", "custom_priority": 52},
				{"id": 21, "name": "Low login", "custom_priority": 3}
			], "next_page": null}`)
			return
		}
		fmt.Fprint(w, `{"result": [], "next_page": null}`)
	})

	reg := newTestRegistry(t, mock)
	result := callTool(t, reg, "testmo_search_cases_recursive", map[string]any{
		"project_id":     float64(1),
		"folder_id":      float64(2),
		"query":          "login",
		"custom_filters": map[string]any{"custom_priority": float64(52)},
	})
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", result.Content[0].Text)
	}

	payload := decodeResult(t, result)
	if got := payload["total_matches"].(float64); got != 1 {
		t.Errorf("total_matches = %v, want 1 after custom filtering", got)
	}
	cases := payload["cases"].([]any)
	match := cases[0].(map[string]any)
	if match["name"] != "Critical login" {
		t.Errorf("match = %v, want the critical case", match["name"])
	}
	if match["_folder_path"] != "Root A / Child A1 / Grandchild A1a" {
		t.Errorf("_folder_path = %v, want the full path", match["_folder_path"])
	}

	// The search must have been delegated to the API with the query filter.
	searches := mock.RequestsFor("GET", "/projects/1/cases")
	if len(searches) == 0 {
		t.Fatal("no search requests recorded")
	}
	if got := searches[0].Query.Get("query"); got != "login" {
		t.Errorf("query param = %q, want login", got)
	}
}
