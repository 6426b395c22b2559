package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Corpus and index paths
	DocsPath        string
	PDFDir          string
	VectorStorePath string

	// Chunking
	ChunkWindowWords  int
	ChunkOverlapWords int

	// Retrieval
	TopK                int
	SimilarityThreshold float64

	// Conversation
	MaxHistoryPairs   int
	SessionTTLMinutes int

	// Embeddings configuration
	EmbeddingsProvider    string // "local" (default), "google"
	EmbeddingModel        string
	EmbeddingDim          int
	EmbeddingServiceURL   string
	GeminiAPIKey          string
	GoogleEmbeddingsModel string

	// Chat model
	OpenRouterAPIKey string
	OpenRouterModel  string
	AppReferer       string
	AppTitle         string

	// Redis Configuration
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Rate limiting (per client IP)
	RateLimitReqs   int
	RateLimitWindow int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:5173"), ","),

		DocsPath:        getEnv("DOCS_PATH", "./data/docs.json"),
		PDFDir:          getEnv("PDF_DIR", ""),
		VectorStorePath: getEnv("VECTOR_STORE_PATH", "./data/vector_store.json"),

		ChunkWindowWords:  getEnvInt("CHUNK_WINDOW_WORDS", 300),
		ChunkOverlapWords: getEnvInt("CHUNK_OVERLAP_WORDS", 50),

		TopK:                getEnvInt("TOP_K", 3),
		SimilarityThreshold: getEnvFloat64("SIMILARITY_THRESHOLD", 0.30),

		MaxHistoryPairs:   getEnvInt("MAX_HISTORY_PAIRS", 5),
		SessionTTLMinutes: getEnvInt("SESSION_TTL_MINUTES", 0),

		// Embeddings
		EmbeddingsProvider:    getEnv("EMBEDDINGS_PROVIDER", "local"),
		EmbeddingModel:        getEnv("EMBEDDING_MODEL", "all-MiniLM-L6-v2"),
		EmbeddingDim:          getEnvInt("EMBEDDING_DIM", 384),
		EmbeddingServiceURL:   getEnv("EMBEDDING_SERVICE_URL", "http://localhost:8001"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GoogleEmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		// Chat model
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterModel:  getEnv("OPENROUTER_MODEL", "mistralai/mistral-7b-instruct:free"),
		AppReferer:       getEnv("APP_REFERER", "http://localhost:8080"),
		AppTitle:         getEnv("APP_TITLE", "University Support Assistant"),

		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),
	}

	// Validate required fields. The OpenRouter key is checked by the LLM
	// client so the ingest command can run without it.
	if cfg.EmbeddingsProvider == "google" && cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required when EMBEDDINGS_PROVIDER=google")
	}

	if cfg.ChunkOverlapWords >= cfg.ChunkWindowWords {
		return nil, fmt.Errorf("CHUNK_OVERLAP_WORDS must be smaller than CHUNK_WINDOW_WORDS")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
