package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"github.com/govnavigator/govnavigator-mcp/internal/config"
	"github.com/govnavigator/govnavigator-mcp/internal/embedder"
	"github.com/govnavigator/govnavigator-mcp/internal/index"
	"github.com/govnavigator/govnavigator-mcp/internal/searcher"
	"github.com/govnavigator/govnavigator-mcp/internal/storage"
	"github.com/govnavigator/govnavigator-mcp/internal/vectorindex"
)

const (
	// ServerName is the MCP server name
	ServerName = "govnavigator-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  *storage.Store
	searcher *searcher.Searcher
	embedder embedder.Embedder
}

// NewServer loads the index snapshots named by cfg and assembles the MCP
// server. A lexical snapshot is required; the embedding snapshot and the
// embedding provider are both optional, and when either is missing the
// server runs lexical-only.
func NewServer(cfg *config.Config) (*Server, error) {
	store, err := storage.Open(cfg.Snapshot.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}

	lexSnap, err := store.LoadLexical(context.Background())
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to load lexical index: %w", err)
	}
	lexical, err := index.FromSnapshot(lexSnap)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("lexical snapshot rejected: %w", err)
	}

	emb, err := embedder.New(embedder.Config{
		Provider:  cfg.Embedding.Provider,
		Model:     cfg.Embedding.Model,
		CacheSize: cfg.Embedding.CacheSize,
	})
	if err != nil {
		if !errors.Is(err, embedder.ErrNoProviderEnabled) {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		log.Printf("no embedding provider configured, semantic search disabled")
		emb = nil
	}

	var vector *vectorindex.Index
	if emb != nil {
		vecSnap, err := store.LoadVectors(context.Background())
		switch {
		case errors.Is(err, storage.ErrNoSnapshot):
			log.Printf("no embedding snapshot present, semantic search disabled")
		case err != nil:
			_ = store.Close()
			return nil, fmt.Errorf("failed to load embedding index: %w", err)
		default:
			vector, err = vectorindex.FromSnapshot(vecSnap, emb)
			if err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("embedding snapshot rejected: %w", err)
			}
		}
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:      mcpServer,
		storage:  store,
		searcher: searcher.New(lexical, vector),
		embedder: emb,
	}
	s.registerTools()

	log.Printf("loaded %d ordinances, semantic search available: %v",
		lexical.DocumentCount(), s.searcher.SemanticAvailable())

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if s.embedder != nil {
			_ = s.embedder.Close()
		}
		_ = s.storage.Close()
	}()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchOrdinanceTool(), s.handleSearchOrdinance)
	s.mcp.AddTool(getOrdinanceDetailsTool(), s.handleGetOrdinanceDetails)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
