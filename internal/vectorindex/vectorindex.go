package vectorindex

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/govnavigator/govnavigator-mcp/internal/embedder"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

// Ingestion defaults. The free tiers of embedding providers allow only a
// few requests per minute, so batches are small and widely spaced.
const (
	DefaultBatchSize        = 5
	DefaultBatchDelay       = 25 * time.Second
	DefaultRateLimitBackoff = 30 * time.Second

	// embedContentChars caps how much document content goes into the
	// embedding input alongside the title.
	embedContentChars = 1000

	// semanticSnippetChars is the excerpt length attached to semantic
	// results. There is no literal term match to center on, so the
	// excerpt is taken from the start of the content.
	semanticSnippetChars = 300
)

// BuilderOptions configures embedding ingestion
type BuilderOptions struct {
	BatchSize        int
	BatchDelay       time.Duration
	RateLimitBackoff time.Duration
}

// Builder ingests documents into an embedding index by calling the
// external embedder in strictly sequential batches. It is not safe for
// concurrent use; no two batches are ever in flight at once, which keeps
// the request rate within provider limits.
type Builder struct {
	embedder embedder.Embedder
	opts     BuilderOptions

	docs    []types.Document
	vectors [][]float32

	// sleep is replaced in tests to observe the delay schedule
	sleep func(ctx context.Context, d time.Duration) error
}

// NewBuilder creates an embedding index builder backed by emb
func NewBuilder(emb embedder.Embedder, opts BuilderOptions) *Builder {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay <= 0 {
		opts.BatchDelay = DefaultBatchDelay
	}
	if opts.RateLimitBackoff <= 0 {
		opts.RateLimitBackoff = DefaultRateLimitBackoff
	}
	return &Builder{
		embedder: emb,
		opts:     opts,
		sleep:    sleepCtx,
	}
}

// sleepCtx waits for d or until ctx is canceled
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// embeddingText builds the embedding input for a document: the title plus
// the leading portion of the content.
func embeddingText(doc types.Document) string {
	content := doc.Content
	if len(content) > embedContentChars {
		content = content[:embedContentChars]
	}
	return doc.Title + " " + content
}

// AddDocuments embeds docs in contiguous batches and appends them to the
// index. Batches are issued one at a time with a fixed delay between all
// but the last. A rate-limited batch is retried exactly once after a
// fixed backoff; any other failure, or a second rate-limit failure,
// halts ingestion. Documents from batches that completed before the
// failure remain in the builder and stay queryable after Finalize.
func (b *Builder) AddDocuments(ctx context.Context, docs []types.Document) error {
	for start := 0; start < len(docs); start += b.opts.BatchSize {
		end := start + b.opts.BatchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]

		texts := make([]string, len(batch))
		for i, doc := range batch {
			texts[i] = embeddingText(doc)
		}

		vectors, err := b.embedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch %d-%d: %w", start, end-1, err)
		}
		if err := b.appendBatch(batch, vectors); err != nil {
			return err
		}

		if end < len(docs) {
			if err := b.sleep(ctx, b.opts.BatchDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// embedBatch calls the embedder once, retrying a single time after a
// fixed backoff when the failure is classified as a rate limit.
func (b *Builder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, texts)
	if err == nil {
		return vectors, nil
	}
	if !embedder.IsRateLimited(err) {
		return nil, err
	}

	if sleepErr := b.sleep(ctx, b.opts.RateLimitBackoff); sleepErr != nil {
		return nil, sleepErr
	}
	return b.embedder.EmbedDocuments(ctx, texts)
}

// appendBatch validates alignment and appends documents and vectors
// atomically: either the whole batch lands in the index or none of it.
func (b *Builder) appendBatch(batch []types.Document, vectors [][]float32) error {
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d documents", embedder.ErrProviderFailed, len(vectors), len(batch))
	}

	dim := 0
	if len(b.vectors) > 0 {
		dim = len(b.vectors[0])
	}
	for _, vec := range vectors {
		if dim == 0 {
			dim = len(vec)
		}
		if len(vec) != dim {
			return fmt.Errorf("%w: provider returned %d-dimension vector, index holds %d", ErrDimensionMismatch, len(vec), dim)
		}
	}

	for i, doc := range batch {
		doc.ID = len(b.docs)
		b.docs = append(b.docs, doc)
		b.vectors = append(b.vectors, vectors[i])
	}
	return nil
}

// DocumentCount returns the number of documents ingested so far
func (b *Builder) DocumentCount() int {
	return len(b.docs)
}

// Finalize returns the immutable, query-ready embedding index. It may be
// called after a partial ingestion; whatever batches landed successfully
// are queryable. The builder must not be used after Finalize.
func (b *Builder) Finalize() *Index {
	ix := &Index{
		embedder: b.embedder,
		docs:     b.docs,
		vectors:  b.vectors,
	}
	b.docs = nil
	b.vectors = nil
	return ix
}

// Index is a finalized embedding index. It is immutable and safe for
// unlimited concurrent queries; each query issues its own independent
// embed call.
type Index struct {
	embedder embedder.Embedder
	docs     []types.Document
	vectors  [][]float32
}

// DocumentCount returns the number of indexed documents
func (ix *Index) DocumentCount() int {
	return len(ix.docs)
}

// Dimension returns the vector dimension, or 0 for an empty index
func (ix *Index) Dimension() int {
	if len(ix.vectors) == 0 {
		return 0
	}
	return len(ix.vectors[0])
}

// Documents returns the indexed documents in insertion order. Callers
// must treat the returned slice as read-only.
func (ix *Index) Documents() []types.Document {
	return ix.docs
}

// Snapshot is the full persistable state of an embedding index
type Snapshot struct {
	Documents []types.Document
	Vectors   [][]float32
}

// Snapshot captures the index state for persistence. The returned
// snapshot shares storage with the index; it must not be mutated.
func (ix *Index) Snapshot() Snapshot {
	return Snapshot{Documents: ix.docs, Vectors: ix.vectors}
}

// FromSnapshot reconstructs a query-ready index from a persisted
// snapshot, verifying document/vector alignment and uniform dimension.
func FromSnapshot(s Snapshot, emb embedder.Embedder) (*Index, error) {
	if len(s.Documents) != len(s.Vectors) {
		return nil, fmt.Errorf("snapshot has %d documents but %d vectors", len(s.Documents), len(s.Vectors))
	}
	for i, vec := range s.Vectors {
		if len(vec) != len(s.Vectors[0]) {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, expected %d", ErrDimensionMismatch, i, len(vec), len(s.Vectors[0]))
		}
	}
	return &Index{
		embedder: emb,
		docs:     s.Documents,
		vectors:  s.Vectors,
	}, nil
}

// Search embeds the query and ranks every stored document by cosine
// similarity, returning the top maxResults. No score threshold is
// applied; the top-K is returned even when similarities are low. An
// embed failure surfaces as an error, never as an empty result set.
func (ix *Index) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	if ix.embedder == nil {
		return nil, embedder.ErrNoProviderEnabled
	}

	queryVec, err := ix.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	type scored struct {
		docID int
		score float64
	}
	candidates := make([]scored, len(ix.vectors))
	for i, vec := range ix.vectors {
		score, err := CosineSimilarity(queryVec, vec)
		if err != nil {
			return nil, err
		}
		candidates[i] = scored{docID: i, score: score}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if maxResults >= 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}

	results := make([]types.SearchResult, 0, len(candidates))
	for _, c := range candidates {
		doc := ix.docs[c.docID]
		snippet := doc.Content
		if len(snippet) > semanticSnippetChars {
			snippet = snippet[:semanticSnippetChars] + "..."
		}
		results = append(results, types.SearchResult{
			Document: doc,
			Score:    c.score,
			Snippet:  snippet,
		})
	}
	return results, nil
}
