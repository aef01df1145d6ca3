// Package config loads configuration from environment variables.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Coach providers.
const (
	ProviderGemini     = "gemini"
	ProviderGrok       = "grok"
	ProviderOpenRouter = "openrouter"
)

// Config holds runtime settings. Every field is optional; missing keys
// disable the feature that needs them.
type Config struct {
	HTTPAddr            string
	DatabaseURL         string
	GoogleAPIKey        string
	XAIAPIKey           string
	OpenRouterAPIKey    string
	CoachProvider       string
	CoachModel          string
	EmbeddingModel      string
	TipsTopK            int
	VitalsInterval      time.Duration
	HeartRateBaseline   float64
	TemperatureBaseline float64
	LogLevel            slog.Level
}

// Load reads env vars and applies defaults.
func Load() Config {
	cfg := Config{
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		GoogleAPIKey:     os.Getenv("GOOGLE_API_KEY"),
		XAIAPIKey:        os.Getenv("XAI_API_KEY"),
		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		CoachProvider:    strings.ToLower(strings.TrimSpace(os.Getenv("COACH_PROVIDER"))),
		CoachModel:       os.Getenv("COACH_MODEL"),
		EmbeddingModel:   os.Getenv("EMBEDDING_MODEL"),
	}

	cfg.TipsTopK = getEnvInt("TIPS_TOP_K", 3)
	cfg.VitalsInterval = getEnvDuration("VITALS_INTERVAL", time.Second)
	cfg.HeartRateBaseline = getEnvFloat("HR_BASELINE", 70)
	cfg.TemperatureBaseline = getEnvFloat("TEMP_BASELINE", 33.0)
	cfg.LogLevel = getEnvLevel("LOG_LEVEL", slog.LevelInfo)

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.CoachProvider == "" {
		cfg.CoachProvider = ProviderGemini
	}
	if cfg.CoachModel == "" {
		cfg.CoachModel = defaultCoachModel(cfg.CoachProvider)
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-004"
	}
	if cfg.TipsTopK <= 0 {
		cfg.TipsTopK = 3
	}

	return cfg
}

// CoachAPIKey returns the API key for the configured coach provider.
func (c Config) CoachAPIKey() string {
	switch c.CoachProvider {
	case ProviderGrok:
		return c.XAIAPIKey
	case ProviderOpenRouter:
		return c.OpenRouterAPIKey
	default:
		return c.GoogleAPIKey
	}
}

// CoachEnabled reports whether an LLM coach can be built.
func (c Config) CoachEnabled() bool {
	return c.CoachAPIKey() != ""
}

// EmbeddingsEnabled reports whether tip embeddings can be computed.
func (c Config) EmbeddingsEnabled() bool {
	return c.GoogleAPIKey != ""
}

func defaultCoachModel(provider string) string {
	switch provider {
	case ProviderGrok:
		return "grok-4-fast"
	case ProviderOpenRouter:
		return "google/gemini-2.5-flash"
	default:
		return "gemini-2.5-flash"
	}
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

func getEnvLevel(key string, defaultVal slog.Level) slog.Level {
	if val := os.Getenv(key); val != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(val)); err == nil {
			return level
		}
	}
	return defaultVal
}
