package index_test

import (
	"math"
	"testing"

	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

func buildIndex(docs ...types.Document) *index.Index {
	b := index.NewBuilder()
	for _, doc := range docs {
		b.AddDocument(doc)
	}
	return b.Finalize()
}

func TestAddDocumentAssignsSequentialIDs(t *testing.T) {
	b := index.NewBuilder()
	for i := 0; i < 3; i++ {
		id := b.AddDocument(types.Document{Title: "Fences"})
		if id != i {
			t.Fatalf("AddDocument returned ID %d, want %d", id, i)
		}
	}
	if b.DocumentCount() != 3 {
		t.Fatalf("DocumentCount = %d, want 3", b.DocumentCount())
	}
}

func TestIDFFormula(t *testing.T) {
	// 3 documents; "fence" appears in 2, "noise" in 1
	ix := buildIndex(
		types.Document{Title: "Fences", Content: "fence height limits"},
		types.Document{Title: "Walls", Content: "fence and wall materials"},
		types.Document{Title: "Noise", Content: "noise limits at night"},
	)

	snap := ix.Snapshot()
	if got, want := snap.IDF["fenc"], math.Log(4.0/3.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(fenc) = %v, want %v", got, want)
	}
	if got, want := snap.IDF["nois"], math.Log(4.0/2.0); math.Abs(got-want) > 1e-12 {
		t.Errorf("idf(nois) = %v, want %v", got, want)
	}
	// Rarer terms weigh more
	if snap.IDF["nois"] <= snap.IDF["fenc"] {
		t.Errorf("idf(nois)=%v should exceed idf(fenc)=%v", snap.IDF["nois"], snap.IDF["fenc"])
	}
}

func TestSearchPrefersFocusedDocument(t *testing.T) {
	ix := buildIndex(
		types.Document{
			Title:   "Fences and Walls",
			Content: "No fence shall exceed six feet. Corner lot fences require a permit. Fence materials must be approved.",
		},
		types.Document{
			Title:   "Parking Regulations",
			Content: "Parking permits are required downtown. A fence around a parking lot is permitted.",
		},
		types.Document{
			Title:   "Noise Control",
			Content: "Quiet hours begin at ten. Loud machinery is prohibited overnight.",
		},
	)

	results := ix.Search("fence height", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.Title != "Fences and Walls" {
		t.Errorf("top result = %q, want the fence ordinance", results[0].Document.Title)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
	if len(results[0].MatchedTerms) == 0 {
		t.Error("top result has no matched terms")
	}
}

func TestSearchTitleDoubleWeight(t *testing.T) {
	// Same body; only one mentions the term in the title
	ix := buildIndex(
		types.Document{Title: "General Provisions", Content: "fence standards apply citywide"},
		types.Document{Title: "Fence Standards", Content: "fence standards apply citywide"},
	)

	results := ix.Search("fence", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.Title != "Fence Standards" {
		t.Errorf("title match should rank first, got %q", results[0].Document.Title)
	}
}

func TestSearchEmptyAndUnmatchedQueries(t *testing.T) {
	ix := buildIndex(types.Document{Title: "Fences", Content: "fence rules"})

	if got := ix.Search("", 5); len(got) != 0 {
		t.Errorf("empty query returned %d results", len(got))
	}
	if got := ix.Search("the and of", 5); len(got) != 0 {
		t.Errorf("all-stopword query returned %d results", len(got))
	}
	if got := ix.Search("zeppelin", 5); len(got) != 0 {
		t.Errorf("unmatched query returned %d results", len(got))
	}
}

func TestSearchTieBreakInsertionOrder(t *testing.T) {
	// Identical documents score identically; first added must win
	ix := buildIndex(
		types.Document{Title: "Fences A", Content: "fence"},
		types.Document{Title: "Fences B", Content: "fence"},
	)

	results := ix.Search("fence", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != 0 || results[1].Document.ID != 1 {
		t.Errorf("tie not broken by insertion order: got IDs %d, %d",
			results[0].Document.ID, results[1].Document.ID)
	}
}

func TestSearchMaxResultsTruncation(t *testing.T) {
	b := index.NewBuilder()
	for i := 0; i < 8; i++ {
		b.AddDocument(types.Document{Title: "Fences", Content: "fence"})
	}
	ix := b.Finalize()

	if got := ix.Search("fence", 3); len(got) != 3 {
		t.Fatalf("got %d results, want 3", len(got))
	}
}

func TestSearchLengthNormalization(t *testing.T) {
	long := "fence"
	for i := 0; i < 200; i++ {
		long += " unrelated filler words about miscellaneous municipal topics"
	}
	ix := buildIndex(
		types.Document{Title: "Short", Content: "fence"},
		types.Document{Title: "Long", Content: long},
	)

	results := ix.Search("fence", 5)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.Title != "Short" {
		t.Errorf("short focused document should outrank long diluted one, got %q",
			results[0].Document.Title)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ix := buildIndex(
		types.Document{Title: "Fences and Walls", Content: "fence height limits and materials"},
		types.Document{Title: "Noise Control", Content: "quiet hours and noise limits"},
	)

	restored, err := index.FromSnapshot(ix.Snapshot())
	if err != nil {
		t.Fatalf("FromSnapshot: %v", err)
	}

	orig := ix.Search("fence limits", 5)
	got := restored.Search("fence limits", 5)
	if len(got) != len(orig) {
		t.Fatalf("restored index returned %d results, want %d", len(got), len(orig))
	}
	for i := range orig {
		if got[i].Document.ID != orig[i].Document.ID {
			t.Errorf("result %d: ID %d, want %d", i, got[i].Document.ID, orig[i].Document.ID)
		}
		if math.Abs(got[i].Score-orig[i].Score) > 1e-12 {
			t.Errorf("result %d: score %v, want %v", i, got[i].Score, orig[i].Score)
		}
	}
}

func TestFromSnapshotRejectsCorruption(t *testing.T) {
	ix := buildIndex(types.Document{Title: "Fences", Content: "fence"})

	t.Run("count mismatch", func(t *testing.T) {
		snap := ix.Snapshot()
		snap.NumDocs = 7
		if _, err := index.FromSnapshot(snap); err == nil {
			t.Error("expected error for document count mismatch")
		}
	})

	t.Run("dangling posting", func(t *testing.T) {
		snap := ix.Snapshot()
		snap.Postings = map[string][]index.Posting{
			"fenc": {{DocID: 42, TermFreq: 1}},
		}
		if _, err := index.FromSnapshot(snap); err == nil {
			t.Error("expected error for posting referencing unknown document")
		}
	})

	t.Run("empty posting list", func(t *testing.T) {
		snap := ix.Snapshot()
		snap.Postings = map[string][]index.Posting{"fenc": {}}
		if _, err := index.FromSnapshot(snap); err == nil {
			t.Error("expected error for empty posting list")
		}
	})
}
