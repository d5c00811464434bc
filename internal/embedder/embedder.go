package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// Common errors
var (
	ErrEmptyText           = errors.New("text cannot be empty")
	ErrEmptyBatch          = errors.New("batch contains no texts")
	ErrBatchTooLarge       = errors.New("batch size exceeds limit")
	ErrProviderFailed      = errors.New("embedding provider failed")
	ErrUnsupportedProvider = errors.New("unsupported embedding provider")
	ErrNoProviderEnabled   = errors.New("no embedding provider configured")
)

// FailureKind classifies provider failures so the ingestion retry policy
// can branch on a finite tag set instead of sniffing error text.
type FailureKind int

const (
	// FailureFatal covers auth, malformed-input, and other failures that
	// will not succeed on retry.
	FailureFatal FailureKind = iota
	// FailureTransient covers network errors and server-side failures.
	FailureTransient
	// FailureRateLimited marks rate-limit responses. Ingestion retries a
	// rate-limited batch exactly once after a fixed backoff.
	FailureRateLimited
)

// String returns the tag name for logging
func (k FailureKind) String() string {
	switch k {
	case FailureRateLimited:
		return "rate_limited"
	case FailureTransient:
		return "transient"
	default:
		return "fatal"
	}
}

// ProviderError wraps a provider failure with its classification
type ProviderError struct {
	Provider string
	Kind     FailureKind
	Status   int // HTTP status, 0 when not applicable
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s embedding failed (%s, status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s embedding failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsRateLimited reports whether err is classified as a rate-limit failure
func IsRateLimited(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Kind == FailureRateLimited
}

// Embedder is the external embedding capability consumed by the vector
// index. Documents and queries are embedded through separate operations
// because some providers encode them asymmetrically.
type Embedder interface {
	// EmbedDocuments returns one fixed-dimension vector per input text,
	// in input order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery returns a single vector for a search query
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// Dimension returns the embedding dimension for this provider
	Dimension() int

	// Provider returns the provider name
	Provider() string

	// Model returns the model name
	Model() string

	// Close releases any resources held by the embedder
	Close() error
}

// ComputeHash computes the SHA-256 hash of text for cache keys
func ComputeHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}

// ValidateBatch validates the texts of a batch embed call
func ValidateBatch(texts []string) error {
	if len(texts) == 0 {
		return ErrEmptyBatch
	}
	for i, text := range texts {
		if text == "" {
			return fmt.Errorf("%w: text at index %d", ErrEmptyText, i)
		}
	}
	return nil
}
