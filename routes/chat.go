package routes

import (
	"errors"
	"net/http"
	"time"

	"university-rag-assistant/internal/ai"
	"university-rag-assistant/internal/config"
	"university-rag-assistant/internal/logger"
	"university-rag-assistant/internal/telemetry"
	"university-rag-assistant/middleware"
	"university-rag-assistant/models"
	"university-rag-assistant/services"
	"university-rag-assistant/utils"

	"github.com/gin-gonic/gin"
)

// ChatDeps bundles everything the chat endpoints need.
type ChatDeps struct {
	Config   *config.Config
	Store    *services.VectorStore
	Embedder ai.Embedder
	LLM      *ai.OpenRouterClient
	Prompts  *services.PromptService
	Sessions *services.SessionStore
	Metrics  *telemetry.Metrics
}

func SetupChatRoutes(router *gin.Engine, deps *ChatDeps) {
	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":          "ok",
			"chunks_loaded":   deps.Store.Len(),
			"llm_model":       deps.LLM.Model(),
			"embedding_model": deps.Embedder.Model(),
		})
	})

	api.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx := c.Request.Context()
		requestID := middleware.GetRequestID(c)

		queryVec, err := deps.Embedder.Embed(ctx, req.Message)
		if err != nil {
			logger.Error("Query embedding failed", "request_id", requestID, "error", err)
			utils.RespondWithInternalError(c, "Failed to process the question", nil)
			return
		}

		retrieved := services.TopKSimilar(queryVec, deps.Store.Records(),
			deps.Config.TopK, deps.Config.SimilarityThreshold)
		deps.Metrics.RecordRetrieval(len(retrieved))

		history := deps.Sessions.History(req.SessionID)
		messages := deps.Prompts.BuildMessages(req.Message, retrieved, history)

		reply, tokens, err := deps.LLM.ChatCompletion(ctx, messages)
		if err != nil {
			handleLLMError(c, requestID, err)
			return
		}
		if reply == "" {
			reply = services.FallbackText
		}

		deps.Sessions.AppendExchange(req.SessionID, req.Message, reply)
		deps.Metrics.RecordTokensUsed(int64(tokens), deps.LLM.Model())

		scores := make([]models.SourceScore, 0, len(retrieved))
		for _, rc := range retrieved {
			scores = append(scores, models.SourceScore{Title: rc.Record.Title, Score: rc.Score})
		}

		logger.Info("Chat exchange completed",
			"request_id", requestID,
			"session_id", req.SessionID,
			"retrieved_chunks", len(retrieved),
			"tokens_used", tokens,
		)

		c.JSON(http.StatusOK, models.ChatResponse{
			Reply:           reply,
			TokensUsed:      tokens,
			RetrievedChunks: len(retrieved),
			Scores:          scores,
			SessionID:       req.SessionID,
			Timestamp:       time.Now().UTC(),
		})
	})

	api.POST("/session/new", func(c *gin.Context) {
		id := deps.Sessions.Create()
		c.JSON(http.StatusOK, gin.H{"session_id": id})
	})

	api.DELETE("/session/:id", func(c *gin.Context) {
		id := c.Param("id")
		deps.Sessions.Clear(id)
		c.JSON(http.StatusOK, gin.H{"cleared": true, "session_id": id})
	})
}

// handleLLMError maps upstream failures onto the gateway statuses clients
// already depend on.
func handleLLMError(c *gin.Context, requestID string, err error) {
	logger.Error("LLM request failed", "request_id", requestID, "error", err)

	switch {
	case errors.Is(err, ai.ErrLLMRateLimited):
		utils.RespondWithError(c, http.StatusTooManyRequests,
			"llm_rate_limited", "The assistant is receiving too many requests. Please try again shortly.", nil)
	case errors.Is(err, ai.ErrLLMTimeout):
		utils.RespondWithError(c, http.StatusGatewayTimeout,
			"llm_timeout", "The assistant took too long to respond. Please try again.", nil)
	case errors.Is(err, ai.ErrLLMUnavailable):
		utils.RespondWithError(c, http.StatusServiceUnavailable,
			"llm_unavailable", services.FallbackText, nil)
	default:
		utils.RespondWithError(c, http.StatusBadGateway,
			"llm_error", "The assistant could not generate a response. Please try again.", nil)
	}
}
