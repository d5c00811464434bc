package mcp

import (
	"strings"
	"testing"

	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

func TestGetIntDefault(t *testing.T) {
	args := map[string]interface{}{
		"from_json": float64(7), // JSON numbers decode as float64
		"native":    3,
		"wrong":     "nope",
	}

	if got := getIntDefault(args, "from_json", 5); got != 7 {
		t.Errorf("from_json = %d, want 7", got)
	}
	if got := getIntDefault(args, "native", 5); got != 3 {
		t.Errorf("native = %d, want 3", got)
	}
	if got := getIntDefault(args, "wrong", 5); got != 5 {
		t.Errorf("wrong type = %d, want default 5", got)
	}
	if got := getIntDefault(args, "missing", 5); got != 5 {
		t.Errorf("missing = %d, want default 5", got)
	}
}

func TestGetStringDefault(t *testing.T) {
	args := map[string]interface{}{"mode": "semantic", "num": float64(1)}

	if got := getStringDefault(args, "mode", "lexical"); got != "semantic" {
		t.Errorf("mode = %q", got)
	}
	if got := getStringDefault(args, "num", "lexical"); got != "lexical" {
		t.Errorf("wrong type = %q, want default", got)
	}
}

func TestFormatSearchResults(t *testing.T) {
	results := []types.SearchResult{
		{
			Document: types.Document{
				Title:         "Fences and Walls",
				SectionNumber: "28.142",
				Chapter:       "Zoning",
				URL:           "https://example.org/28.142",
			},
			Score:   0.4321,
			Snippet: "No fence shall exceed six feet...",
		},
		{
			Document: types.Document{Title: "Noise Control", URL: "https://example.org/24.04"},
			Score:    0.1,
			Snippet:  "Quiet hours begin at ten.",
		},
	}

	out := formatSearchResults("fence height", results)

	for _, want := range []string{
		"Found 2 relevant ordinance sections for 'fence height':",
		"--- Result 1 ---",
		"Title: Fences and Walls",
		"Section: 28.142",
		"Chapter: Zoning",
		"Relevance Score: 0.4321",
		"Excerpt: No fence shall exceed six feet...",
		"URL: https://example.org/28.142",
		"--- Result 2 ---",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	// Empty section and chapter lines are omitted for the second result
	second := out[strings.Index(out, "--- Result 2 ---"):]
	if strings.Contains(second, "Section:") || strings.Contains(second, "Chapter:") {
		t.Errorf("empty fields rendered:\n%s", second)
	}
}

func TestToolDefinitions(t *testing.T) {
	search := searchOrdinanceTool()
	if search.Name != "search_ordinance" {
		t.Errorf("tool name = %q", search.Name)
	}
	if got := search.InputSchema.Required; len(got) != 1 || got[0] != "query" {
		t.Errorf("required = %v, want [query]", got)
	}

	details := getOrdinanceDetailsTool()
	if details.Name != "get_ordinance_details" {
		t.Errorf("tool name = %q", details.Name)
	}
	if got := details.InputSchema.Required; len(got) != 1 || got[0] != "title" {
		t.Errorf("required = %v, want [title]", got)
	}

	status := getStatusTool()
	if status.Name != "get_status" {
		t.Errorf("tool name = %q", status.Name)
	}
	if len(status.InputSchema.Required) != 0 {
		t.Errorf("get_status should require no parameters")
	}
}
