package index

import "strings"

const (
	// SnippetContextChars is the number of characters kept on each side
	// of the first query-term match.
	SnippetContextChars = 100

	// snippetFallbackChars caps the excerpt when no query term occurs
	// verbatim in the content.
	snippetFallbackChars = 200
)

// MakeSnippet extracts an excerpt of content around the first literal,
// case-insensitive occurrence of any query token. Tokens are tried in
// query order, not by relevance. When no token occurs verbatim (the match
// came through stemming), the start of the content is returned instead.
func MakeSnippet(content string, queryTokens []string, contextChars int) string {
	contentLower := strings.ToLower(content)

	for _, token := range queryTokens {
		pos := strings.Index(contentLower, strings.ToLower(token))
		if pos < 0 {
			continue
		}

		start := pos - contextChars
		if start < 0 {
			start = 0
		}
		end := pos + len(token) + contextChars
		if end > len(content) {
			end = len(content)
		}

		snippet := content[start:end]
		if start > 0 {
			snippet = "..." + snippet
		}
		if end < len(content) {
			snippet = snippet + "..."
		}
		return strings.TrimSpace(snippet)
	}

	if len(content) > snippetFallbackChars {
		return content[:snippetFallbackChars] + "..."
	}
	return content
}
