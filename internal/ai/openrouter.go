package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"university-rag-assistant/models"
)

const openRouterURL = "https://openrouter.ai/api/v1/chat/completions"

// Typed LLM failures so the HTTP layer can map them to precise statuses.
var (
	ErrLLMRateLimited = errors.New("llm rate limit reached")
	ErrLLMTimeout     = errors.New("llm request timed out")
	ErrLLMUnavailable = errors.New("llm temporarily unavailable")
)

// OpenRouterClient calls the OpenRouter chat-completions API. The only
// external API this service uses. Calls go through a client-side rate
// limiter and a circuit breaker so a degraded upstream degrades us politely
// instead of cascading.
type OpenRouterClient struct {
	apiKey      string
	model       string
	referer     string
	title       string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	rateLimiter *rate.Limiter
}

type chatCompletionRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		FinishReason string             `json:"finish_reason"`
		Message      models.ChatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// NewOpenRouterClient creates a client for the configured model. The API
// key is required; the caller treats a missing key as fatal at startup.
func NewOpenRouterClient(apiKey, model, referer, title string) (*OpenRouterClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY is not set")
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "OpenRouterAPI",
		MaxRequests: 5,
		Interval:    10 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})

	return &OpenRouterClient{
		apiKey:      apiKey,
		model:       model,
		referer:     referer,
		title:       title,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
		breaker:     breaker,
		rateLimiter: rate.NewLimiter(rate.Limit(1), 5),
	}, nil
}

// ChatCompletion sends the assembled prompt and returns the reply text and
// the total tokens consumed.
func (c *OpenRouterClient) ChatCompletion(ctx context.Context, messages []models.ChatMessage) (string, int, error) {
	tracer := otel.Tracer("openrouter-client")
	ctx, span := tracer.Start(ctx, "openrouter.chat_completion")
	defer span.End()

	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.Int("llm.messages", len(messages)),
	)

	if err := c.rateLimiter.Wait(ctx); err != nil {
		span.SetAttributes(attribute.Bool("llm.rate_limited", true))
		return "", 0, fmt.Errorf("%w: %v", ErrLLMRateLimited, err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, messages)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			span.SetAttributes(attribute.Bool("llm.circuit_breaker_open", true))
			return "", 0, ErrLLMUnavailable
		}
		span.SetAttributes(attribute.Bool("llm.error", true))
		return "", 0, err
	}

	resp := result.(*chatCompletionResponse)
	reply := resp.Choices[0].Message.Content
	tokens := resp.Usage.TotalTokens

	span.SetAttributes(
		attribute.Int("llm.tokens_used", tokens),
		attribute.String("llm.finish_reason", resp.Choices[0].FinishReason),
	)
	return reply, tokens, nil
}

func (c *OpenRouterClient) doRequest(ctx context.Context, messages []models.ChatMessage) (*chatCompletionResponse, error) {
	body, err := json.Marshal(chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   1024,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, openRouterURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("HTTP-Referer", c.referer)
	req.Header.Set("X-Title", c.title)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLLMTimeout
		}
		var urlTimeout interface{ Timeout() bool }
		if errors.As(err, &urlTimeout) && urlTimeout.Timeout() {
			return nil, ErrLLMTimeout
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrLLMRateLimited
	}
	if resp.StatusCode == http.StatusGatewayTimeout {
		return nil, ErrLLMTimeout
	}

	var out chatCompletionResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	// OpenRouter reports some errors in the body regardless of status code.
	if out.Error != nil && out.Error.Message != "" {
		return nil, fmt.Errorf("OpenRouter API error: %s (code: %d)", out.Error.Message, out.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenRouter API HTTP error (status %d): %s", resp.StatusCode, string(payload))
	}
	if len(out.Choices) == 0 {
		return nil, fmt.Errorf("OpenRouter API returned no choices")
	}
	return &out, nil
}

// Model returns the configured chat model identifier.
func (c *OpenRouterClient) Model() string { return c.model }
