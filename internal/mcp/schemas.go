package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// searchOrdinanceTool returns the tool definition for search_ordinance
func searchOrdinanceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_ordinance",
		Description: "Search municipal code ordinances with natural language or keyword queries",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (e.g., 'fence height requirements', 'noise after 10pm')",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-10)",
					"default":     types.DefaultMaxResults,
					"minimum":     1,
					"maximum":     types.MaxMaxResults,
				},
				"search_mode": map[string]interface{}{
					"type":        "string",
					"description": "Search strategy: lexical (TF-IDF keyword match) or semantic (embedding similarity)",
					"enum":        []string{"lexical", "semantic"},
					"default":     "lexical",
				},
			},
			Required: []string{"query"},
		},
	}
}

// getOrdinanceDetailsTool returns the tool definition for get_ordinance_details
func getOrdinanceDetailsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_ordinance_details",
		Description: "Get the full text of an ordinance by title (case-insensitive substring match)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": map[string]interface{}{
					"type":        "string",
					"description": "Ordinance title or a fragment of it",
				},
			},
			Required: []string{"title"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Query index statistics and semantic search availability",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
