// Package config loads application configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration
type Config struct {
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
}

// SnapshotConfig locates the persisted index database
type SnapshotConfig struct {
	Path string `yaml:"path"`
}

// EmbeddingConfig selects and tunes the embedding provider. An empty
// provider means auto-detect from the environment; API keys are never
// read from the config file.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	CacheSize int    `yaml:"cacheSize"`
}

// IngestConfig controls embedding ingestion pacing
type IngestConfig struct {
	BatchSize        int           `yaml:"batchSize"`
	BatchDelay       time.Duration `yaml:"batchDelay"`
	RateLimitBackoff time.Duration `yaml:"rateLimitBackoff"`
}

// Load reads a YAML config file (if provided) and applies
// environment-variable overrides. Missing values fall back to defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Path: "govnavigator.db",
		},
		Embedding: EmbeddingConfig{
			CacheSize: 10000,
		},
		Ingest: IngestConfig{
			BatchSize:        5,
			BatchDelay:       25 * time.Second,
			RateLimitBackoff: 30 * time.Second,
		},
	}
}

// applyEnvOverrides reads GOVNAV_* environment variables and overrides
// the corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GOVNAV_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("GOVNAV_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("GOVNAV_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("GOVNAV_EMBEDDING_CACHE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.CacheSize = size
		}
	}
	if v := os.Getenv("GOVNAV_INGEST_BATCH_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.BatchSize = size
		}
	}
	if v := os.Getenv("GOVNAV_INGEST_BATCH_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ingest.BatchDelay = d
		}
	}
	if v := os.Getenv("GOVNAV_INGEST_RATE_LIMIT_BACKOFF"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Ingest.RateLimitBackoff = d
		}
	}
}
