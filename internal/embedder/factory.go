package embedder

import (
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted by the factory
const (
	EnvProvider     = "GOVNAV_EMBEDDING_PROVIDER"
	EnvVoyageAPIKey = "VOYAGE_API_KEY"
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
)

// Config holds embedder configuration
type Config struct {
	Provider  string
	Model     string
	APIKey    string
	CacheSize int
}

// NewFromEnv creates an embedder based on environment variables.
// Priority:
//  1. GOVNAV_EMBEDDING_PROVIDER (voyage, openai)
//  2. Check for API keys: VOYAGE_API_KEY, OPENAI_API_KEY
//
// When no provider can be configured, ErrNoProviderEnabled is returned;
// callers may serve lexical-only search without an embedder.
func NewFromEnv() (Embedder, error) {
	provider := os.Getenv(EnvProvider)
	voyageKey := os.Getenv(EnvVoyageAPIKey)
	openaiKey := os.Getenv(EnvOpenAIAPIKey)

	cache := NewCache(DefaultCacheSize)

	if provider != "" {
		provider = strings.ToLower(provider)
		switch provider {
		case ProviderVoyage:
			return NewVoyageProvider(voyageKey, cache)
		case ProviderOpenAI:
			return NewOpenAIProvider(openaiKey, cache)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
		}
	}

	if voyageKey != "" {
		return NewVoyageProvider(voyageKey, cache)
	}
	if openaiKey != "" {
		return NewOpenAIProvider(openaiKey, cache)
	}

	return nil, fmt.Errorf("%w: set %s or %s", ErrNoProviderEnabled, EnvVoyageAPIKey, EnvOpenAIAPIKey)
}

// New creates an embedder with explicit configuration
func New(cfg Config) (Embedder, error) {
	var cache *Cache
	if cfg.CacheSize > 0 {
		cache = NewCache(cfg.CacheSize)
	}

	switch strings.ToLower(cfg.Provider) {
	case ProviderVoyage:
		p, err := NewVoyageProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		if cfg.Model != "" {
			p.model = cfg.Model
		}
		return p, nil
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg.APIKey, cache)
		if err != nil {
			return nil, err
		}
		if cfg.Model != "" {
			p.model = cfg.Model
		}
		return p, nil
	case "":
		return NewFromEnv()
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// DetectProvider returns the provider that would be used based on the
// current environment, or an empty string when none is configured.
func DetectProvider() string {
	if provider := os.Getenv(EnvProvider); provider != "" {
		return strings.ToLower(provider)
	}
	if os.Getenv(EnvVoyageAPIKey) != "" {
		return ProviderVoyage
	}
	if os.Getenv(EnvOpenAIAPIKey) != "" {
		return ProviderOpenAI
	}
	return ""
}
