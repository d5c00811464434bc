// Package searcher is the query surface over the lexical and embedding
// indexes. It owns request validation, result limits, and document
// detail lookup; the ranking itself lives in the index packages.
package searcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/internal/vectorindex"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// ErrSemanticUnavailable is returned for semantic searches when no
// embedding index is loaded.
var ErrSemanticUnavailable = errors.New("semantic search unavailable: no embedding index loaded")

// Detail lookup limits
const (
	// detailContentLimit caps the content returned by GetDetails
	detailContentLimit = 5000

	// truncationNotice is appended when content is cut at the limit
	truncationNotice = "\n\n[Content truncated. See full text at URL.]"
)

// Mode selects the ranking strategy for a search
type Mode string

const (
	ModeLexical  Mode = "lexical"
	ModeSemantic Mode = "semantic"
)

// Searcher answers queries against the loaded indexes. The embedding
// index may be nil, in which case only lexical search is served.
type Searcher struct {
	lexical *index.Index
	vector  *vectorindex.Index
}

// New creates a searcher over the given indexes. lexical must be
// non-nil; vector may be nil for lexical-only service.
func New(lexical *index.Index, vector *vectorindex.Index) *Searcher {
	return &Searcher{
		lexical: lexical,
		vector:  vector,
	}
}

// SemanticAvailable reports whether semantic search can be served
func (s *Searcher) SemanticAvailable() bool {
	return s.vector != nil
}

// Search validates the query, clamps maxResults into [1, 10] (zero or
// negative means the default of 5), and dispatches to the requested
// mode. A query that matches nothing returns an empty slice and no
// error; a failed embed call returns an error, never silent emptiness.
func (s *Searcher) Search(ctx context.Context, query string, maxResults int, mode Mode) ([]types.SearchResult, error) {
	q := types.SearchQuery{Query: query, MaxResults: maxResults}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.ClampMaxResults()

	switch mode {
	case ModeLexical, "":
		return s.lexical.Search(q.Query, q.MaxResults), nil
	case ModeSemantic:
		if s.vector == nil {
			return nil, ErrSemanticUnavailable
		}
		return s.vector.Search(ctx, q.Query, q.MaxResults)
	default:
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}
}

// GetDetails returns the first document, in insertion order, whose
// title contains the given title case-insensitively. Content longer
// than the detail limit is cut and marked with a truncation notice.
func (s *Searcher) GetDetails(title string) (types.Document, error) {
	if title == "" {
		return types.Document{}, types.ErrMissingTitle
	}

	needle := strings.ToLower(title)
	for _, doc := range s.lexical.Documents() {
		if !strings.Contains(strings.ToLower(doc.Title), needle) {
			continue
		}
		if len(doc.Content) > detailContentLimit {
			doc.Content = doc.Content[:detailContentLimit] + truncationNotice
		}
		return doc, nil
	}
	return types.Document{}, fmt.Errorf("%w: no ordinance with title containing %q", types.ErrNotFound, title)
}

// Status summarizes what the searcher can currently serve
type Status struct {
	DocumentCount     int  `json:"document_count"`
	TermCount         int  `json:"term_count"`
	SemanticAvailable bool `json:"semantic_available"`
	EmbeddedDocuments int  `json:"embedded_documents,omitempty"`
	VectorDimension   int  `json:"vector_dimension,omitempty"`
}

// Status reports index sizes and semantic availability
func (s *Searcher) Status() Status {
	st := Status{
		DocumentCount: s.lexical.DocumentCount(),
		TermCount:     s.lexical.TermCount(),
	}
	if s.vector != nil {
		st.SemanticAvailable = true
		st.EmbeddedDocuments = s.vector.DocumentCount()
		st.VectorDimension = s.vector.Dimension()
	}
	return st
}
