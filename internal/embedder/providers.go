package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Provider configuration
const (
	ProviderVoyage = "voyage"
	ProviderOpenAI = "openai"

	// Default models
	DefaultVoyageModel = "voyage-2"
	DefaultOpenAIModel = "text-embedding-3-small"

	// Dimensions
	VoyageDimension = 1024
	OpenAIDimension = 1536

	// Batch limits
	MaxBatchSize = 128

	// HTTP
	defaultRequestTimeout = 30 * time.Second
)

// Voyage input types. Voyage encodes documents and search queries
// asymmetrically, so the two embed paths send different input_type values.
const (
	voyageInputDocument = "document"
	voyageInputQuery    = "query"
)

// classifyStatus maps an HTTP status to a failure kind
func classifyStatus(status int) FailureKind {
	switch {
	case status == http.StatusTooManyRequests:
		return FailureRateLimited
	case status >= 500:
		return FailureTransient
	default:
		return FailureFatal
	}
}

// embeddingsResponse is the shared response shape of the Voyage and
// OpenAI embeddings endpoints.
type embeddingsResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

// VoyageProvider implements Embedder using the Voyage AI API
type VoyageProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewVoyageProvider creates a new Voyage AI embedder. When apiKey is empty
// the VOYAGE_API_KEY environment variable is consulted.
func NewVoyageProvider(apiKey string, cache *Cache) (*VoyageProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvVoyageAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvVoyageAPIKey)
	}

	return &VoyageProvider{
		apiKey:  apiKey,
		model:   DefaultVoyageModel,
		baseURL: "https://api.voyageai.com/v1",
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		cache: cache,
	}, nil
}

func (v *VoyageProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}
	return v.callAPI(ctx, texts, voyageInputDocument)
}

func (v *VoyageProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if v.cache != nil {
		if vec, ok := v.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vectors, err := v.callAPI(ctx, []string{text}, voyageInputQuery)
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrProviderFailed, len(vectors))
	}

	if v.cache != nil {
		v.cache.Set(hash, vectors[0])
	}
	return vectors[0], nil
}

func (v *VoyageProvider) callAPI(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model":      v.model,
		"input":      texts,
		"input_type": inputType,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", v.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderVoyage, Kind: FailureTransient, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider: ProviderVoyage,
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("api error: %s", string(bodyBytes)),
		}
	}

	var apiResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, data := range apiResp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (v *VoyageProvider) Dimension() int {
	return VoyageDimension
}

func (v *VoyageProvider) Provider() string {
	return ProviderVoyage
}

func (v *VoyageProvider) Model() string {
	return v.model
}

func (v *VoyageProvider) Close() error {
	v.httpClient.CloseIdleConnections()
	return nil
}

// OpenAIProvider implements Embedder using the OpenAI API. OpenAI encodes
// documents and queries symmetrically, so both paths share one call.
type OpenAIProvider struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	cache      *Cache
}

// NewOpenAIProvider creates a new OpenAI embedder. When apiKey is empty
// the OPENAI_API_KEY environment variable is consulted.
func NewOpenAIProvider(apiKey string, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		apiKey = os.Getenv(EnvOpenAIAPIKey)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s not set", ErrNoProviderEnabled, EnvOpenAIAPIKey)
	}

	return &OpenAIProvider{
		apiKey:  apiKey,
		model:   DefaultOpenAIModel,
		baseURL: "https://api.openai.com/v1",
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
		cache: cache,
	}, nil
}

func (o *OpenAIProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if err := ValidateBatch(texts); err != nil {
		return nil, err
	}
	if len(texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}
	return o.callAPI(ctx, texts)
}

func (o *OpenAIProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	hash := ComputeHash(text)
	if o.cache != nil {
		if vec, ok := o.cache.Get(hash); ok {
			return vec, nil
		}
	}

	vectors, err := o.callAPI(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrProviderFailed, len(vectors))
	}

	if o.cache != nil {
		o.cache.Set(hash, vectors[0])
	}
	return vectors[0], nil
}

func (o *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([][]float32, error) {
	reqBody := map[string]interface{}{
		"model": o.model,
		"input": texts,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: ProviderOpenAI, Kind: FailureTransient, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, &ProviderError{
			Provider: ProviderOpenAI,
			Kind:     classifyStatus(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("api error: %s", string(bodyBytes)),
		}
	}

	var apiResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrProviderFailed, len(apiResp.Data), len(texts))
	}

	vectors := make([][]float32, len(apiResp.Data))
	for i, data := range apiResp.Data {
		vectors[i] = data.Embedding
	}
	return vectors, nil
}

func (o *OpenAIProvider) Dimension() int {
	return OpenAIDimension
}

func (o *OpenAIProvider) Provider() string {
	return ProviderOpenAI
}

func (o *OpenAIProvider) Model() string {
	return o.model
}

func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}
