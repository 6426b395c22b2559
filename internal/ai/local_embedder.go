package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"university-rag-assistant/utils"
)

// LocalEmbedder talks to a local sentence-transformers sidecar (the same
// model for ingestion and queries, all-MiniLM-L6-v2 by default). Embedding
// is pure local computation with no external API, so there is no retry
// policy: a dead sidecar is a startup failure, not a per-request one.
type LocalEmbedder struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
}

type embedRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
	Data      []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewLocalEmbedder connects to the embedding sidecar and verifies the model
// is loaded with the expected dimension. Fails fast when the sidecar is
// unreachable or serves a different model than configured.
func NewLocalEmbedder(ctx context.Context, baseURL, model string, wantDim int) (*LocalEmbedder, error) {
	e := &LocalEmbedder{
		baseURL:    baseURL,
		model:      model,
		dimension:  wantDim,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}

	// Probe with a trivial input. This both checks liveness and confirms
	// the served model produces vectors of the configured dimension.
	vec, err := e.Embed(ctx, "startup probe")
	if err != nil {
		return nil, fmt.Errorf("embedding model unavailable at %s: %w", baseURL, err)
	}
	if wantDim > 0 && len(vec) != wantDim {
		return nil, fmt.Errorf("embedding sidecar at %s produces %d dimensions, expected %d (wrong model?)",
			baseURL, len(vec), wantDim)
	}
	if wantDim == 0 {
		e.dimension = len(vec)
	}
	return e, nil
}

// Embed returns the normalized embedding vector for the given text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(embedRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("embedding sidecar returned %s: %s", resp.Status, string(payload))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}

	vec := out.Embedding
	// OpenAI-compatible sidecars wrap the vector in a data array.
	if len(vec) == 0 && len(out.Data) > 0 {
		vec = out.Data[0].Embedding
	}
	if len(vec) == 0 {
		return nil, fmt.Errorf("embedding sidecar returned no vector")
	}
	if e.dimension > 0 && len(vec) != e.dimension {
		return nil, fmt.Errorf("embedding dimension changed mid-run: got %d, expected %d", len(vec), e.dimension)
	}

	return utils.Normalize(vec), nil
}

// Dimension returns the embedding dimension of the loaded model.
func (e *LocalEmbedder) Dimension() int { return e.dimension }

// Model returns the model identifier used to tag the vector store.
func (e *LocalEmbedder) Model() string { return e.model }

// Provider returns the provider tag recorded in the vector store header.
func (e *LocalEmbedder) Provider() string { return "local" }
