package ai

import (
	"context"
	"errors"
	"fmt"

	"university-rag-assistant/internal/config"
)

// ErrEmptyInput is returned when a caller asks to embed an empty string.
// Callers are expected to validate input before reaching the embedder; an
// empty string must never be silently embedded.
var ErrEmptyInput = errors.New("cannot embed empty text")

// Embedder maps a text to a fixed-dimension dense vector. The same embedder
// (same model, same version) must be used for ingestion and for queries, or
// similarity scores become meaningless. Implementations are deterministic
// for a fixed model version and safe for concurrent use.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
	Model() string
	Provider() string
}

// NewEmbedder constructs the configured embedding provider. Default is the
// local sentence-embedding sidecar; "google" uses Gemini embeddings.
// Construction probes the model and fails fast, so a missing or broken
// model is fatal at startup rather than on the first request.
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	switch cfg.EmbeddingsProvider {
	case "local", "":
		return NewLocalEmbedder(ctx, cfg.EmbeddingServiceURL, cfg.EmbeddingModel, cfg.EmbeddingDim)
	case "google":
		return NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GoogleEmbeddingsModel)
	default:
		return nil, fmt.Errorf("unknown embeddings provider: %s", cfg.EmbeddingsProvider)
	}
}
