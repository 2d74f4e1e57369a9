package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Session SessionConfig
	Rag     RagConfig
	Ai      AIConfig
	Keys    APIKeys
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

type RagConfig struct {
	ChunkSize     int
	ChunkOverlap  int
	TopK          int
	EmbeddingDim  int
	MaxUploadMB   int
	HistoryWindow int
}

type AIConfig struct {
	EmbeddingProvider string // "hashing" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	DefaultProvider   string // "groq" or "huggingface"
	LLMTimeout        time.Duration
}

// APIKeys are server-side fallback keys, used when a chat request does not
// carry its own.
type APIKeys struct {
	Groq        string
	HuggingFace string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8001"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Session: SessionConfig{
			TTL:           time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 30)) * time.Minute,
			SweepInterval: time.Duration(getEnvAsInt("SESSION_SWEEP_MINUTES", 5)) * time.Minute,
		},
		Rag: RagConfig{
			ChunkSize:     getEnvAsInt("RAG_CHUNK_SIZE", 500),
			ChunkOverlap:  getEnvAsInt("RAG_CHUNK_OVERLAP", 50),
			TopK:          getEnvAsInt("RAG_TOP_K", 3),
			EmbeddingDim:  getEnvAsInt("RAG_EMBEDDING_DIM", 256),
			MaxUploadMB:   getEnvAsInt("MAX_UPLOAD_MB", 10),
			HistoryWindow: getEnvAsInt("RAG_HISTORY_WINDOW", 6),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "hashing"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			DefaultProvider:   getEnv("LLM_PROVIDER", "groq"),
			LLMTimeout:        time.Duration(getEnvAsInt("LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		},
		Keys: APIKeys{
			Groq:        getEnv("GROQ_API_KEY", ""),
			HuggingFace: getEnv("HF_API_KEY", ""),
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
