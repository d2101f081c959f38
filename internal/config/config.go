package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	Store  StoreConfig
	Ai     AIConfig
	Chat   ChatConfig
	Ingest IngestConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	UploadDir          string
}

type StoreConfig struct {
	Driver     string // "postgres" or "memory"
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaBaseURL     string
	EmbeddingModel    string
	LLMProvider       string // "ollama", "openai", etc
	LLMModel          string // e.g. "llama3", "qwen2.5"
	GoogleGemini      string
}

type ChatConfig struct {
	HistoryLimit        int // user+assistant pairs carried into the prompt
	ContextBudget       int // max characters of passage text per prompt
	TopK                int
	SimilarityThreshold float64
	StreamBufferSize    int
	SnippetLength       int
}

type IngestConfig struct {
	ChunkSize         int
	ChunkOverlap      int
	AllowedExtensions []string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		},
		Store: StoreConfig{
			Driver:     getEnv("STORE_DRIVER", "postgres"),
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			GoogleGemini:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
		},
		Chat: ChatConfig{
			HistoryLimit:        getEnvAsInt("CONVERSATION_MESSAGE_LIMIT", 6),
			ContextBudget:       getEnvAsInt("CHAT_CONTEXT_BUDGET", 8000),
			TopK:                getEnvAsInt("CHAT_TOP_K", 5),
			SimilarityThreshold: getEnvAsFloat("CHAT_SIMILARITY_THRESHOLD", 0.35),
			StreamBufferSize:    getEnvAsInt("CHAT_STREAM_BUFFER_SIZE", 32),
			SnippetLength:       getEnvAsInt("CHAT_SNIPPET_LENGTH", 200),
		},
		Ingest: IngestConfig{
			ChunkSize:         getEnvAsInt("INGEST_CHUNK_SIZE", 1500),
			ChunkOverlap:      getEnvAsInt("INGEST_CHUNK_OVERLAP", 200),
			AllowedExtensions: getEnvAsList("INGEST_ALLOWED_EXTENSIONS", ".pdf,.docx,.txt,.md,.xlsx,.csv"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
