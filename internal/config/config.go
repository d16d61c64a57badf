package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv      string
	LogLevel    slog.Level
	LogFormat   string
	CORSOrigins []string

	OpenAIBaseURL  string
	OpenAIAPIKey   string
	EmbeddingModel string
	ChatModel      string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	QdrantVectorSize int

	AuthServiceURL string
	AuthTimeout    time.Duration

	DBPath             string
	MaxChunksRetrieved int
	APIPort            string
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		CORSOrigins:      splitOrigins(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "text-embedding-ada-002"),
		ChatModel:        getEnv("CHAT_MODEL", "gpt-4-turbo-preview"),
		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION_NAME", "textbook_chunks"),
		AuthServiceURL:   getEnv("AUTH_SERVICE_URL", "http://localhost:3001"),
		DBPath:           getEnv("DB_PATH", "./data/textbook-rag.db"),
		APIPort:          getEnv("API_PORT", "8000"),
	}

	switch strings.ToLower(getEnv("LOG_LEVEL", "info")) {
	case "debug":
		cfg.LogLevel = slog.LevelDebug
	case "warn":
		cfg.LogLevel = slog.LevelWarn
	case "error":
		cfg.LogLevel = slog.LevelError
	default:
		cfg.LogLevel = slog.LevelInfo
	}

	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	// Must match the output dimension of the embedding model. If the vector
	// size changes, the Qdrant collection has to be recreated.
	vectorSize, err := getEnvInt("QDRANT_VECTOR_SIZE", 1536)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	maxChunks, err := getEnvInt("MAX_CHUNKS_RETRIEVED", 5)
	if err != nil {
		return nil, fmt.Errorf("MAX_CHUNKS_RETRIEVED must be a valid integer: %w", err)
	}
	if maxChunks <= 0 {
		return nil, fmt.Errorf("MAX_CHUNKS_RETRIEVED must be greater than 0")
	}
	cfg.MaxChunksRetrieved = maxChunks

	authTimeout, err := getEnvInt("AUTH_SERVICE_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, fmt.Errorf("AUTH_SERVICE_TIMEOUT_SECONDS must be a valid integer: %w", err)
	}
	cfg.AuthTimeout = time.Duration(authTimeout) * time.Second

	// Create the data directory if it doesn't exist (for the SQLite file)
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

// splitOrigins splits a comma-separated origin list, trimming whitespace.
func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
