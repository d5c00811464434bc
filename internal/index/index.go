// Package index implements the lexical TF-IDF index over ordinance
// documents: an inverted posting list per stemmed term, per-document
// lengths for normalization, and IDF weights computed once at build time.
//
// The build and serve phases are separated at the type level. A Builder
// only accepts documents; Finalize computes the IDF table and returns an
// immutable Index that only answers queries. This makes the degenerate
// "search before IDF" state unrepresentable.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/govnavigator/govnavigator-mcp/internal/analyzer"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// Posting records one document's frequency for a term. A term's posting
// list holds at most one entry per document, in document insertion order.
type Posting struct {
	DocID    int
	TermFreq int
}

// Builder accumulates documents for a lexical index. It is not safe for
// concurrent use; index construction is single-threaded.
type Builder struct {
	docs       []types.Document
	postings   map[string][]Posting
	docLengths []int
}

// NewBuilder creates an empty lexical index builder
func NewBuilder() *Builder {
	return &Builder{
		postings: make(map[string][]Posting),
	}
}

// AddDocument assigns the next sequential document ID, indexes the
// document's text, and returns the assigned ID. The title is indexed twice
// so title matches outweigh body matches. Empty documents are legal and
// simply contribute no postings.
func (b *Builder) AddDocument(doc types.Document) int {
	docID := len(b.docs)
	doc.ID = docID
	b.docs = append(b.docs, doc)

	text := doc.Title + " " + doc.Title + " " + doc.Content
	stems := analyzer.StemAll(analyzer.Tokenize(text))

	counts := make(map[string]int, len(stems))
	for _, stem := range stems {
		counts[stem]++
	}
	for term, count := range counts {
		b.postings[term] = append(b.postings[term], Posting{DocID: docID, TermFreq: count})
	}

	b.docLengths = append(b.docLengths, len(stems))
	return docID
}

// DocumentCount returns the number of documents added so far
func (b *Builder) DocumentCount() int {
	return len(b.docs)
}

// Finalize computes the IDF table from the accumulated postings and
// returns the immutable, query-ready index. The builder must not be used
// after Finalize.
func (b *Builder) Finalize() *Index {
	n := float64(len(b.docs))
	idf := make(map[string]float64, len(b.postings))
	for term, postings := range b.postings {
		df := float64(len(postings))
		idf[term] = math.Log((n + 1) / (df + 1))
	}

	ix := &Index{
		docs:       b.docs,
		postings:   b.postings,
		idf:        idf,
		docLengths: b.docLengths,
	}
	b.docs = nil
	b.postings = nil
	b.docLengths = nil
	return ix
}

// Index is a finalized lexical index. It is immutable and safe for
// unlimited concurrent queries.
type Index struct {
	docs       []types.Document
	postings   map[string][]Posting
	idf        map[string]float64
	docLengths []int
}

// DocumentCount returns the number of indexed documents
func (ix *Index) DocumentCount() int {
	return len(ix.docs)
}

// TermCount returns the number of distinct stemmed terms in the index
func (ix *Index) TermCount() int {
	return len(ix.postings)
}

// Documents returns the indexed documents in insertion order. Callers must
// treat the returned slice as read-only.
func (ix *Index) Documents() []types.Document {
	return ix.docs
}

// Snapshot is the full persistable state of a lexical index
type Snapshot struct {
	Documents  []types.Document
	Postings   map[string][]Posting
	IDF        map[string]float64
	DocLengths []int
	NumDocs    int
}

// Snapshot captures the index state for persistence. The returned snapshot
// shares storage with the index; it must not be mutated.
func (ix *Index) Snapshot() Snapshot {
	return Snapshot{
		Documents:  ix.docs,
		Postings:   ix.postings,
		IDF:        ix.idf,
		DocLengths: ix.docLengths,
		NumDocs:    len(ix.docs),
	}
}

// FromSnapshot reconstructs a query-ready index from a persisted snapshot.
// A round-tripped index produces identical scores and ordering to the
// index that was saved.
func FromSnapshot(s Snapshot) (*Index, error) {
	if s.NumDocs != len(s.Documents) {
		return nil, fmt.Errorf("snapshot document count %d does not match %d documents", s.NumDocs, len(s.Documents))
	}
	if len(s.DocLengths) != len(s.Documents) {
		return nil, fmt.Errorf("snapshot has %d doc lengths for %d documents", len(s.DocLengths), len(s.Documents))
	}
	for term, postings := range s.Postings {
		if len(postings) == 0 {
			return nil, fmt.Errorf("snapshot term %q has an empty posting list", term)
		}
		for _, p := range postings {
			if p.DocID < 0 || p.DocID >= len(s.Documents) {
				return nil, fmt.Errorf("snapshot term %q references unknown document %d", term, p.DocID)
			}
		}
	}
	postings := s.Postings
	if postings == nil {
		postings = make(map[string][]Posting)
	}
	idf := s.IDF
	if idf == nil {
		idf = make(map[string]float64)
	}
	return &Index{
		docs:       s.Documents,
		postings:   postings,
		idf:        idf,
		docLengths: s.DocLengths,
	}, nil
}

// Search tokenizes and stems the query, scores every document containing
// at least one query term, and returns the top maxResults ordered by
// descending score. Ties are broken by insertion order (first-added wins).
// A query that tokenizes to nothing returns an empty result set.
func (ix *Index) Search(query string, maxResults int) []types.SearchResult {
	tokens := analyzer.Tokenize(query)
	stems := analyzer.StemAll(tokens)
	if len(stems) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	matched := make(map[int]map[string]struct{})

	seen := make(map[string]struct{}, len(stems))
	for _, stem := range stems {
		if _, dup := seen[stem]; dup {
			continue
		}
		seen[stem] = struct{}{}

		postings, ok := ix.postings[stem]
		if !ok {
			continue
		}
		idf := ix.idf[stem]

		for _, p := range postings {
			// TF dampened with log, IDF from the precomputed table,
			// normalized by sqrt of document length so long sections
			// do not dominate.
			tf := math.Log(1 + float64(p.TermFreq))
			score := tf * idf / math.Sqrt(float64(ix.docLengths[p.DocID])+1)

			scores[p.DocID] += score
			terms, ok := matched[p.DocID]
			if !ok {
				terms = make(map[string]struct{})
				matched[p.DocID] = terms
			}
			terms[stem] = struct{}{}
		}
	}

	// Collect in insertion order first so the stable sort preserves
	// first-added-wins on equal scores.
	docIDs := make([]int, 0, len(scores))
	for docID := range scores {
		docIDs = append(docIDs, docID)
	}
	sort.Ints(docIDs)
	sort.SliceStable(docIDs, func(i, j int) bool {
		return scores[docIDs[i]] > scores[docIDs[j]]
	})

	if maxResults >= 0 && len(docIDs) > maxResults {
		docIDs = docIDs[:maxResults]
	}

	results := make([]types.SearchResult, 0, len(docIDs))
	for _, docID := range docIDs {
		terms := make([]string, 0, len(matched[docID]))
		for term := range matched[docID] {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		results = append(results, types.SearchResult{
			Document:     ix.docs[docID],
			Score:        scores[docID],
			MatchedTerms: terms,
			Snippet:      MakeSnippet(ix.docs[docID].Content, tokens, SnippetContextChars),
		})
	}
	return results
}
