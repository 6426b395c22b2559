package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all application metrics
type Metrics struct {
	RequestCounter   metric.Int64Counter
	RequestDuration  metric.Float64Histogram
	TokensUsed       metric.Int64Counter
	ChunksRetrieved  metric.Int64Histogram
	EmbeddingLatency metric.Float64Histogram
}

// InitMetrics initializes all application metrics
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter("university-rag-assistant")

	requestCounter, err := meter.Int64Counter(
		"http.requests.total",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokensUsed, err := meter.Int64Counter(
		"llm.tokens.used",
		metric.WithDescription("Total LLM tokens used"),
	)
	if err != nil {
		return nil, err
	}

	chunksRetrieved, err := meter.Int64Histogram(
		"retrieval.chunks.returned",
		metric.WithDescription("Chunks returned per retrieval"),
	)
	if err != nil {
		return nil, err
	}

	embeddingLatency, err := meter.Float64Histogram(
		"embedding.request.duration",
		metric.WithDescription("Embedding request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		RequestCounter:   requestCounter,
		RequestDuration:  requestDuration,
		TokensUsed:       tokensUsed,
		ChunksRetrieved:  chunksRetrieved,
		EmbeddingLatency: embeddingLatency,
	}, nil
}

// RecordRequest records HTTP request metrics
func (m *Metrics) RecordRequest(method, path, status string, duration float64) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("http.path", path),
		attribute.String("http.status", status),
	}

	m.RequestCounter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
	m.RequestDuration.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}

// RecordTokensUsed records LLM token usage
func (m *Metrics) RecordTokensUsed(tokens int64, model string) {
	attrs := []attribute.KeyValue{
		attribute.String("llm.model", model),
	}

	m.TokensUsed.Add(context.Background(), tokens, metric.WithAttributes(attrs...))
}

// RecordRetrieval records how many chunks passed the similarity threshold
func (m *Metrics) RecordRetrieval(count int) {
	m.ChunksRetrieved.Record(context.Background(), int64(count))
}

// RecordEmbedding records embedding call latency
func (m *Metrics) RecordEmbedding(duration float64, provider string) {
	attrs := []attribute.KeyValue{
		attribute.String("embedding.provider", provider),
	}

	m.EmbeddingLatency.Record(context.Background(), duration, metric.WithAttributes(attrs...))
}
