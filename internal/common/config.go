package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server ServerConfig
	OCR    OCRConfig
	LLM    LLMConfig
	Embed  EmbedConfig
	Index  IndexConfig
	DB     DBConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Addr          string
	MaxUploadSize int64
}

// OCRConfig holds OCR-engine-related configuration
type OCRConfig struct {
	EngineURL string // PaddleOCR-style HTTP service; empty with vision enabled means use the vision engine
	UseVision bool
	Timeout   time.Duration
}

// LLMConfig holds chat-model configuration
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	VisionModel string
	Temperature float32
	Timeout     time.Duration
}

// EmbedConfig holds embedding-model configuration
type EmbedConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// IndexConfig holds vector-index configuration
type IndexConfig struct {
	Dir          string // directory holding guidelines.db (sqlite backend)
	Backend      string // "sqlite" | "postgres"
	ChunkSize    int
	ChunkOverlap int
	TopK         int
}

// DBConfig holds database configuration for the postgres index backend and
// the processed-records store.
type DBConfig struct {
	PostgresURL string
	RecordsPath string // sqlite file for processed records
	DialTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          getEnv("SERVER_ADDR", ":8080"),
			MaxUploadSize: int64(getEnvAsInt("MAX_UPLOAD_MB", 10)) * 1024 * 1024,
		},
		OCR: OCRConfig{
			EngineURL: getEnv("OCR_ENGINE_URL", ""),
			UseVision: getEnvAsBool("OCR_USE_VISION", false),
			Timeout:   getEnvAsDuration("OCR_TIMEOUT", 45*time.Second),
		},
		LLM: LLMConfig{
			BaseURL:     getEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:      getEnv("LLM_API_KEY", ""),
			Model:       getEnv("LLM_MODEL", "gpt-4o-mini"),
			VisionModel: getEnv("LLM_VISION_MODEL", "gpt-4o-mini"),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 45*time.Second),
		},
		Embed: EmbedConfig{
			BaseURL: getEnv("EMBED_BASE_URL", getEnv("LLM_BASE_URL", "https://api.openai.com/v1")),
			APIKey:  getEnv("EMBED_API_KEY", getEnv("LLM_API_KEY", "")),
			Model:   getEnv("EMBED_MODEL", "text-embedding-3-small"),
			Timeout: getEnvAsDuration("EMBED_TIMEOUT", 30*time.Second),
		},
		Index: IndexConfig{
			Dir:          getEnv("INDEX_DIR", "./vector_store"),
			Backend:      getEnv("INDEX_BACKEND", "sqlite"),
			ChunkSize:    getEnvAsInt("INDEX_CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("INDEX_CHUNK_OVERLAP", 200),
			TopK:         getEnvAsInt("RETRIEVE_TOP_K", 3),
		},
		DB: DBConfig{
			PostgresURL: getEnv("DATABASE_URL", ""),
			RecordsPath: getEnv("RECORDS_DB_PATH", "./records.db"),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

// Validate checks configuration required for serving.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "SERVER_ADDR is required", ErrInvalidInput)
	}
	if c.Index.Backend == "postgres" && c.DB.PostgresURL == "" {
		return NewAppError("CONFIG_ERROR", "DATABASE_URL is required with INDEX_BACKEND=postgres", ErrInvalidInput)
	}
	if c.Index.ChunkSize <= 0 || c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return NewAppError("CONFIG_ERROR", "chunk overlap must be non-negative and smaller than chunk size", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
