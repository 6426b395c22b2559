package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"university-rag-assistant/internal/ai"
	"university-rag-assistant/internal/config"
	"university-rag-assistant/internal/logger"
	"university-rag-assistant/internal/telemetry"
	"university-rag-assistant/middleware"
	"university-rag-assistant/routes"
	"university-rag-assistant/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Initialize tracing
	shutdownTracer, err := telemetry.InitTracer("university-rag-assistant")
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer shutdownTracer()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics:", err)
	}

	ctx := context.Background()

	// Embedding provider; construction probes the model and fails fast
	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	// The vector store must exist and match the active embedding model.
	// A missing or mismatched store means ingestion has to be re-run.
	store, err := services.LoadVectorStore(cfg.VectorStorePath, embedder.Model(), embedder.Dimension())
	if err != nil {
		log.Fatalf("Failed to load vector store (run the ingest command first): %v", err)
	}
	logger.Info("Vector store loaded", "records", store.Len(), "model", store.Header().Model)

	llm, err := ai.NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.AppReferer, cfg.AppTitle)
	if err != nil {
		log.Fatal("Failed to initialize LLM client:", err)
	}

	sessions := services.NewSessionStore(cfg.MaxHistoryPairs)
	prompts := services.NewPromptService(cfg.MaxHistoryPairs)

	// Optional idle-session eviction
	sweeper := services.NewSessionSweeper(sessions,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute)
	if err := sweeper.Start(); err != nil {
		log.Fatal("Failed to start session sweeper:", err)
	}
	defer sweeper.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.TracingMiddleware())
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))

	// Redis-backed rate limiting; the API stays up without Redis
	if rdb, err := config.NewRedisClient(cfg); err != nil {
		logger.Warn("Rate limiting disabled, Redis unavailable", "error", err)
	} else {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	routes.SetupChatRoutes(router, &routes.ChatDeps{
		Config:   cfg,
		Store:    store,
		Embedder: embedder,
		LLM:      llm,
		Prompts:  prompts,
		Sessions: sessions,
		Metrics:  metrics,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
