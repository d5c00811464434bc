// Package embedder provides the external embedding capability consumed by
// the vector index.
//
// Two providers are supported: Voyage AI (the default, with asymmetric
// document/query encoding via input_type) and OpenAI. Provider failures
// carry a typed classification (RateLimited | Transient | Fatal) so the
// ingestion layer's retry policy is a pure function of the failure kind
// rather than of error message text.
//
// Query embeddings are cached in an in-memory LRU keyed by content hash;
// document embeddings are not cached since each document is embedded once
// per index build.
//
// Provider selection follows the environment:
//
//  1. GOVNAV_EMBEDDING_PROVIDER (voyage, openai)
//  2. VOYAGE_API_KEY present -> voyage
//  3. OPENAI_API_KEY present -> openai
//
// With no provider configured the server runs lexical-only.
package embedder
