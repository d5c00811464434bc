package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/govnavigator/govnavigator-mcp/internal/searcher"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleSearchOrdinance handles the search_ordinance tool invocation
func (s *Server) handleSearchOrdinance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	maxResults := getIntDefault(args, "max_results", types.DefaultMaxResults)

	mode := searcher.Mode(getStringDefault(args, "search_mode", string(searcher.ModeLexical)))
	if mode != searcher.ModeLexical && mode != searcher.ModeSemantic {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid search_mode", map[string]interface{}{
			"param":   "search_mode",
			"value":   string(mode),
			"allowed": []string{string(searcher.ModeLexical), string(searcher.ModeSemantic)},
		})
	}

	results, err := s.searcher.Search(ctx, query, maxResults, mode)
	if err != nil {
		if errors.Is(err, searcher.ErrSemanticUnavailable) {
			return mcp.NewToolResultText("Semantic search is unavailable: no embedding index is loaded. Use search_mode 'lexical' instead."), nil
		}
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No ordinances found matching '%s'. Try different keywords.", query)), nil
	}

	return mcp.NewToolResultText(formatSearchResults(query, results)), nil
}

// formatSearchResults renders results as citation-friendly text
func formatSearchResults(query string, results []types.SearchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d relevant ordinance sections for '%s':\n\n", len(results), query)

	for i, r := range results {
		fmt.Fprintf(&b, "--- Result %d ---\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", r.Document.Title)
		if r.Document.SectionNumber != "" {
			fmt.Fprintf(&b, "Section: %s\n", r.Document.SectionNumber)
		}
		if r.Document.Chapter != "" {
			fmt.Fprintf(&b, "Chapter: %s\n", r.Document.Chapter)
		}
		fmt.Fprintf(&b, "Relevance Score: %.4f\n", r.Score)
		fmt.Fprintf(&b, "Excerpt: %s\n", r.Snippet)
		fmt.Fprintf(&b, "URL: %s\n\n", r.Document.URL)
	}
	return b.String()
}

// handleGetOrdinanceDetails handles the get_ordinance_details tool invocation
func (s *Server) handleGetOrdinanceDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "title parameter is required", map[string]interface{}{
			"param":  "title",
			"reason": "missing or empty",
		})
	}

	doc, err := s.searcher.GetDetails(title)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return mcp.NewToolResultText(fmt.Sprintf("No ordinance found with title matching '%s'", title)), nil
		}
		return nil, newMCPError(ErrorCodeInternalError, "lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s ===\n\n", doc.Title)
	fmt.Fprintf(&b, "Section: %s\n", doc.SectionNumber)
	fmt.Fprintf(&b, "Chapter: %s\n", doc.Chapter)
	fmt.Fprintf(&b, "URL: %s\n\n", doc.URL)
	fmt.Fprintf(&b, "FULL TEXT:\n%s\n", doc.Content)

	return mcp.NewToolResultText(b.String()), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.searcher.Status()

	response := map[string]interface{}{
		"server":             ServerName,
		"version":            ServerVersion,
		"document_count":     status.DocumentCount,
		"term_count":         status.TermCount,
		"semantic_available": status.SemanticAvailable,
	}
	if status.SemanticAvailable {
		response["embedded_documents"] = status.EmbeddedDocuments
		response["vector_dimension"] = status.VectorDimension
	}
	if s.embedder != nil {
		response["embedding_provider"] = s.embedder.Provider()
		response["embedding_model"] = s.embedder.Model()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
