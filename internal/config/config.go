package config

import (
	"os"
	"strconv"
)

type Config struct {
	LogLevel  string
	LogFormat string
	APIPort   string

	ManualsDir       string
	KnowledgeBase    string
	PatternTablePath string

	ChunkSize     int
	ChunkOverlap  int
	MinChunkChars int
	BuildWorkers  int

	TopK         int
	PromptBudget int

	KoboldURL         string
	GenTimeoutSeconds int
	GenMaxLength      int
	GenTemperature    float64
	GenTopP           float64
	GenTopK           int
	GenRepPen         float64
}

func Load() Config {
	return Config{
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		LogFormat: mustEnv("LOG_FORMAT", "json"),
		APIPort:   mustEnv("API_PORT", "8080"),

		ManualsDir:       mustEnv("MANUALS_DIR", "./manuals"),
		KnowledgeBase:    mustEnv("KNOWLEDGE_BASE_PATH", "./data/knowledge_base.json"),
		PatternTablePath: mustEnv("PLATFORM_PATTERNS_PATH", ""),

		ChunkSize:     mustEnvInt("CHUNK_SIZE", 900),
		ChunkOverlap:  mustEnvInt("CHUNK_OVERLAP", 150),
		MinChunkChars: mustEnvInt("MIN_CHUNK_CHARS", 40),
		BuildWorkers:  mustEnvInt("BUILD_WORKERS", 4),

		TopK:         mustEnvInt("RETRIEVAL_TOP_K", 3),
		PromptBudget: mustEnvInt("PROMPT_BUDGET_CHARS", 6000),

		KoboldURL:         mustEnv("KOBOLD_URL", "http://localhost:5001"),
		GenTimeoutSeconds: mustEnvInt("GEN_TIMEOUT_SECONDS", 300),
		GenMaxLength:      mustEnvInt("GEN_MAX_LENGTH", 1000),
		GenTemperature:    mustEnvFloat("GEN_TEMPERATURE", 0.05),
		GenTopP:           mustEnvFloat("GEN_TOP_P", 0.9),
		GenTopK:           mustEnvInt("GEN_TOP_K", 40),
		GenRepPen:         mustEnvFloat("GEN_REP_PEN", 1.1),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
