package ai

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"university-rag-assistant/utils"
)

// geminiEmbeddingDim is the output dimension of text-embedding-004.
const geminiEmbeddingDim = 768

// GeminiEmbedder produces embeddings through the Google Generative AI API.
// The client is constructed once and held for the life of the process so a
// bad API key fails at startup, not on the first query.
type GeminiEmbedder struct {
	client    *genai.Client
	model     string
	dimension int
}

// NewGeminiEmbedder creates the client and verifies credentials with a
// probe embedding.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY for embeddings")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	e := &GeminiEmbedder{client: client, model: model, dimension: geminiEmbeddingDim}
	vec, err := e.Embed(ctx, "startup probe")
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("gemini embeddings unavailable: %w", err)
	}
	e.dimension = len(vec)
	return e, nil
}

// Embed returns the normalized embedding vector for the given text.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	model := e.client.EmbeddingModel(e.model)
	resp, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	vec := make([]float64, len(resp.Embedding.Values))
	for i, v := range resp.Embedding.Values {
		vec[i] = float64(v)
	}
	return utils.Normalize(vec), nil
}

// Dimension returns the embedding dimension of the configured model.
func (e *GeminiEmbedder) Dimension() int { return e.dimension }

// Model returns the model identifier used to tag the vector store.
func (e *GeminiEmbedder) Model() string { return e.model }

// Provider returns the provider tag recorded in the vector store header.
func (e *GeminiEmbedder) Provider() string { return "google" }

// Close releases the underlying API client.
func (e *GeminiEmbedder) Close() error { return e.client.Close() }
