// Command buildindex ingests a scraped ordinance corpus (JSON) and
// writes the lexical and embedding index snapshots the MCP server
// serves from.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/govnavigator/govnavigator-mcp/internal/config"
	"github.com/govnavigator/govnavigator-mcp/internal/embedder"
	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/internal/storage"
	"github.com/govnavigator/govnavigator-mcp/internal/vectorindex"
	"github.com/govnavigator/govnavigator-mcp/pkg/types"
)

func main() {
	var (
		inputPath      = flag.String("input", "", "path to scraped ordinances JSON file")
		configPath     = flag.String("config", "", "path to YAML config file")
		skipEmbeddings = flag.Bool("skip-embeddings", false, "build only the lexical index")
	)
	flag.Parse()

	log.SetOutput(os.Stderr)

	if *inputPath == "" {
		log.Fatal("missing required -input flag")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	docs, err := loadDocuments(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load ordinances: %v", err)
	}
	log.Printf("loaded %d ordinances from %s", len(docs), *inputPath)

	store, err := storage.Open(cfg.Snapshot.Path)
	if err != nil {
		log.Fatalf("Failed to open snapshot database: %v", err)
	}
	defer func() { _ = store.Close() }()

	if err := run(context.Background(), cfg, store, docs, *skipEmbeddings); err != nil {
		log.Fatalf("Build failed: %v", err)
	}
	log.Println("Done")
}

// loadDocuments parses the scraper's JSON output, dropping records
// without a title.
func loadDocuments(path string) ([]types.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw []types.Document
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	docs := make([]types.Document, 0, len(raw))
	for i, doc := range raw {
		if err := doc.Validate(); err != nil {
			log.Printf("skipping record %d: %v", i, err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// run builds the lexical and embedding indexes concurrently and saves
// both snapshots. An embedding failure partway through is logged, not
// fatal: whatever batches landed are saved and remain queryable.
func run(ctx context.Context, cfg *config.Config, store *storage.Store, docs []types.Document, skipEmbeddings bool) error {
	var (
		lexical *index.Index
		vector  *vectorindex.Index
	)

	emb, err := makeEmbedder(cfg, skipEmbeddings)
	if err != nil {
		return err
	}
	if emb != nil {
		defer func() { _ = emb.Close() }()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		builder := index.NewBuilder()
		for _, doc := range docs {
			builder.AddDocument(doc)
		}
		lexical = builder.Finalize()
		log.Printf("lexical index built: %d documents, %d terms",
			lexical.DocumentCount(), lexical.TermCount())
		return nil
	})

	if emb != nil {
		g.Go(func() error {
			builder := vectorindex.NewBuilder(emb, vectorindex.BuilderOptions{
				BatchSize:        cfg.Ingest.BatchSize,
				BatchDelay:       cfg.Ingest.BatchDelay,
				RateLimitBackoff: cfg.Ingest.RateLimitBackoff,
			})
			if err := builder.AddDocuments(gctx, docs); err != nil {
				log.Printf("embedding ingestion halted after %d documents: %v",
					builder.DocumentCount(), err)
			}
			vector = builder.Finalize()
			log.Printf("embedding index built: %d of %d documents",
				vector.DocumentCount(), len(docs))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if err := store.SaveLexical(ctx, lexical.Snapshot()); err != nil {
		return fmt.Errorf("saving lexical snapshot: %w", err)
	}
	log.Println("lexical snapshot saved")

	if vector != nil && vector.DocumentCount() > 0 {
		if err := store.SaveVectors(ctx, vector.Snapshot()); err != nil {
			return fmt.Errorf("saving embedding snapshot: %w", err)
		}
		log.Println("embedding snapshot saved")
	}

	return nil
}

// makeEmbedder resolves the embedding provider, or nil when embeddings
// are skipped or no provider is configured.
func makeEmbedder(cfg *config.Config, skipEmbeddings bool) (embedder.Embedder, error) {
	if skipEmbeddings {
		log.Println("skipping embeddings (-skip-embeddings)")
		return nil, nil
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		if errors.Is(err, embedder.ErrNoProviderEnabled) {
			log.Println("no embedding provider configured, building lexical index only")
			return nil, nil
		}
		return nil, fmt.Errorf("initializing embedder: %w", err)
	}

	log.Printf("embedding with %s (%s)", emb.Provider(), emb.Model())
	return emb, nil
}
