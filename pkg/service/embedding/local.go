// Package embedding provides EmbeddingClient implementations: the local
// sentence-transformer HTTP service, a Gemini backend via gollem, and a
// deterministic feature-hash fallback for degraded operation.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/utils/safe"
)

// The local embedding service accepts at most this many texts per request;
// larger batches are chunked while preserving order.
const localBatchLimit = 100

// Local calls the local sentence-transformer embedding service
// (all-MiniLM-L6-v2, 384 dimensions)
type Local struct {
	endpoint   string
	httpClient *http.Client
}

var _ interfaces.EmbeddingClient = &Local{}

// LocalOption is a functional option for Local configuration
type LocalOption func(*Local)

// WithHTTPClient replaces the HTTP client, for tests
func WithHTTPClient(c *http.Client) LocalOption {
	return func(l *Local) {
		l.httpClient = c
	}
}

// NewLocal creates a client for the local embedding service at endpoint,
// e.g. "http://localhost:8001"
func NewLocal(endpoint string, opts ...LocalOption) (*Local, error) {
	if endpoint == "" {
		return nil, goerr.New("embedding service endpoint is required")
	}

	l := &Local{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Name identifies the backend for health tracking
func (l *Local) Name() string {
	return "local-embedding"
}

type embedRequest struct {
	Texts     []string `json:"texts"`
	Normalize bool     `json:"normalize"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
	Model      string      `json:"model"`
	Dimensions int         `json:"dimensions"`
}

// Embed maps texts to vectors in one or more chunked calls, preserving input
// order. Vectors are requested normalized, as the service recommends for
// similarity use.
func (l *Local) Embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, error) {
	if len(texts) == 0 {
		return &model.EmbeddingBatch{}, nil
	}

	batch := &model.EmbeddingBatch{
		Vectors: make([][]float64, 0, len(texts)),
	}

	for start := 0; start < len(texts); start += localBatchLimit {
		end := start + localBatchLimit
		if end > len(texts) {
			end = len(texts)
		}

		resp, err := l.embedChunk(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(resp.Embeddings) != end-start {
			return nil, goerr.New("embedding service returned wrong vector count",
				goerr.V("expected", end-start), goerr.V("got", len(resp.Embeddings)))
		}

		if batch.Dimensions == 0 {
			batch.Dimensions = resp.Dimensions
			batch.Model = resp.Model
		} else if batch.Dimensions != resp.Dimensions {
			return nil, goerr.New("embedding dimensions changed between chunks",
				goerr.V("expected", batch.Dimensions), goerr.V("got", resp.Dimensions))
		}
		batch.Vectors = append(batch.Vectors, resp.Embeddings...)
	}

	if err := batch.Validate(len(texts)); err != nil {
		return nil, err
	}
	return batch, nil
}

func (l *Local) embedChunk(ctx context.Context, texts []string) (*embedResponse, error) {
	body, err := json.Marshal(embedRequest{Texts: texts, Normalize: true})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode embed request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build embed request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "embedding service request failed")
	}
	defer safe.Close(ctx, httpResp.Body)

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read embedding response")
	}

	// The service answers 503 while its model is loading; keep the phrase
	// "service unavailable" in the message so the resilience layer retries.
	if httpResp.StatusCode == http.StatusServiceUnavailable {
		return nil, goerr.New("embedding service unavailable",
			goerr.V("status", httpResp.StatusCode), goerr.V("body", string(respBody)))
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, goerr.New("embedding service returned error",
			goerr.V("status", httpResp.StatusCode), goerr.V("body", string(respBody)))
	}

	var resp embedResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, goerr.Wrap(err, "failed to decode embedding response")
	}
	return &resp, nil
}

// Health probes the service's health endpoint
func (l *Local) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint+"/health", nil)
	if err != nil {
		return goerr.Wrap(err, "failed to build health request")
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "embedding service health check failed")
	}
	defer safe.Close(ctx, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return goerr.New("embedding service unhealthy", goerr.V("status", resp.StatusCode))
	}
	return nil
}
