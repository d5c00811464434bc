package searcher_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/internal/searcher"
	"github.com/govnavigator/govnavigator-mcp/internal/vectorindex"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// mockEmbedder implements embedder.Embedder returning a fixed vector
type mockEmbedder struct {
	queryVec []float32
	queryErr error
}

func (m *mockEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.queryVec
	}
	return vectors, nil
}

func (m *mockEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	return m.queryVec, nil
}

func (m *mockEmbedder) Dimension() int   { return len(m.queryVec) }
func (m *mockEmbedder) Provider() string { return "mock" }
func (m *mockEmbedder) Model() string    { return "mock-v1" }
func (m *mockEmbedder) Close() error     { return nil }

func lexicalOnly(t *testing.T, docs ...types.Document) *searcher.Searcher {
	t.Helper()
	b := index.NewBuilder()
	for _, doc := range docs {
		b.AddDocument(doc)
	}
	return searcher.New(b.Finalize(), nil)
}

func fenceCorpus(n int) []types.Document {
	docs := make([]types.Document, n)
	for i := range docs {
		docs[i] = types.Document{
			Title:   fmt.Sprintf("Fence Section %d", i),
			Content: "fence height rules",
		}
	}
	return docs
}

func TestSearchValidation(t *testing.T) {
	s := lexicalOnly(t, fenceCorpus(1)...)
	ctx := context.Background()

	_, err := s.Search(ctx, "", 5, searcher.ModeLexical)
	if !errors.Is(err, types.ErrMissingQuery) {
		t.Errorf("empty query: got %v, want ErrMissingQuery", err)
	}

	_, err = s.Search(ctx, "fence", 5, searcher.Mode("hybrid"))
	if err == nil {
		t.Error("unknown mode accepted")
	}
}

func TestSearchMaxResultsClamping(t *testing.T) {
	s := lexicalOnly(t, fenceCorpus(15)...)
	ctx := context.Background()

	tests := []struct {
		name       string
		maxResults int
		wantLen    int
	}{
		{"zero uses default", 0, 5},
		{"negative uses default", -3, 5},
		{"in range respected", 7, 7},
		{"above cap clamped", 50, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := s.Search(ctx, "fence", tt.maxResults, searcher.ModeLexical)
			if err != nil {
				t.Fatalf("Search: %v", err)
			}
			if len(results) != tt.wantLen {
				t.Errorf("got %d results, want %d", len(results), tt.wantLen)
			}
		})
	}
}

func TestSearchNoMatchesIsNotAnError(t *testing.T) {
	s := lexicalOnly(t, fenceCorpus(2)...)

	results, err := s.Search(context.Background(), "zeppelin hangar", 5, searcher.ModeLexical)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestSearchSemanticUnavailable(t *testing.T) {
	s := lexicalOnly(t, fenceCorpus(1)...)

	_, err := s.Search(context.Background(), "fence", 5, searcher.ModeSemantic)
	if !errors.Is(err, searcher.ErrSemanticUnavailable) {
		t.Fatalf("got %v, want ErrSemanticUnavailable", err)
	}
	if s.SemanticAvailable() {
		t.Error("SemanticAvailable() = true without a vector index")
	}
}

func TestSearchSemanticMode(t *testing.T) {
	b := index.NewBuilder()
	b.AddDocument(types.Document{Title: "Fences", Content: "fence rules"})
	lexical := b.Finalize()

	emb := &mockEmbedder{queryVec: []float32{1, 0, 0}}
	vector, err := vectorindex.FromSnapshot(vectorindex.Snapshot{
		Documents: []types.Document{{ID: 0, Title: "Fences", Content: "fence rules"}},
		Vectors:   [][]float32{{1, 0, 0}},
	}, emb)
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	s := searcher.New(lexical, vector)
	if !s.SemanticAvailable() {
		t.Fatal("SemanticAvailable() = false with a vector index")
	}

	results, err := s.Search(context.Background(), "fence height", 5, searcher.ModeSemantic)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Document.Title != "Fences" {
		t.Errorf("unexpected results: %+v", results)
	}

	// Embed failures surface as errors, not empty results
	emb.queryErr = errors.New("provider down")
	if _, err := s.Search(context.Background(), "fence", 5, searcher.ModeSemantic); err == nil {
		t.Error("embed failure swallowed")
	}
}

func TestGetDetails(t *testing.T) {
	s := lexicalOnly(t,
		types.Document{Title: "Fences and Walls", Content: "fence text", URL: "https://example.org/f"},
		types.Document{Title: "Residential Fences", Content: "more fence text"},
	)

	t.Run("case-insensitive substring", func(t *testing.T) {
		doc, err := s.GetDetails("FENCES AND")
		if err != nil {
			t.Fatalf("GetDetails: %v", err)
		}
		if doc.Title != "Fences and Walls" {
			t.Errorf("got %q", doc.Title)
		}
	})

	t.Run("first match in insertion order wins", func(t *testing.T) {
		doc, err := s.GetDetails("fences")
		if err != nil {
			t.Fatalf("GetDetails: %v", err)
		}
		if doc.Title != "Fences and Walls" {
			t.Errorf("got %q, want the first inserted match", doc.Title)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := s.GetDetails("parking")
		if !errors.Is(err, types.ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("empty title", func(t *testing.T) {
		_, err := s.GetDetails("")
		if !errors.Is(err, types.ErrMissingTitle) {
			t.Errorf("got %v, want ErrMissingTitle", err)
		}
	})
}

func TestGetDetailsTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("x", 6000)
	s := lexicalOnly(t, types.Document{Title: "Fences", Content: long})

	doc, err := s.GetDetails("fences")
	if err != nil {
		t.Fatalf("GetDetails: %v", err)
	}
	if !strings.HasSuffix(doc.Content, "[Content truncated. See full text at URL.]") {
		t.Error("truncation notice missing")
	}
	if !strings.HasPrefix(doc.Content, strings.Repeat("x", 5000)) {
		t.Error("content not cut at the limit")
	}
	if strings.HasPrefix(doc.Content, strings.Repeat("x", 5001)) {
		t.Error("content longer than the limit")
	}
}

func TestStatus(t *testing.T) {
	s := lexicalOnly(t, fenceCorpus(3)...)

	st := s.Status()
	if st.DocumentCount != 3 {
		t.Errorf("DocumentCount = %d, want 3", st.DocumentCount)
	}
	if st.TermCount == 0 {
		t.Error("TermCount = 0")
	}
	if st.SemanticAvailable {
		t.Error("SemanticAvailable without vector index")
	}
}
