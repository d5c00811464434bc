package types

// Result limits for the query surface
const (
	DefaultMaxResults = 5
	MaxMaxResults     = 10
)

// SearchResult represents a single search result with relevance information.
// Results are transient: they are built per query and never persisted.
type SearchResult struct {
	Document Document

	// Score is the accumulated relevance score. Lexical scores are
	// unbounded TF-IDF sums; semantic scores are cosine similarities.
	Score float64

	// MatchedTerms holds the stemmed query terms that contributed to the
	// score. Empty for semantic results.
	MatchedTerms []string

	// Snippet is a short excerpt of the document around the first query
	// match, for result preview.
	Snippet string
}

// SearchQuery represents a search request from the caller
type SearchQuery struct {
	Query      string
	MaxResults int
}

// Validate checks that the query is usable. A missing query string is a
// usage error; a query that tokenizes to nothing is not (it yields an
// empty result set instead).
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return ErrMissingQuery
	}
	return nil
}

// ClampMaxResults normalizes MaxResults into [1, MaxMaxResults], applying
// the default when unset.
func (q *SearchQuery) ClampMaxResults() {
	if q.MaxResults <= 0 {
		q.MaxResults = DefaultMaxResults
	}
	if q.MaxResults > MaxMaxResults {
		q.MaxResults = MaxMaxResults
	}
}
