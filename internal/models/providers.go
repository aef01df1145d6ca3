package models

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"github.com/easeaico/neuromirror/internal/config"
)

const (
	grokBaseURL       = "https://api.x.ai/v1"
	openRouterBaseURL = "https://openrouter.ai/api/v1"
)

// NewGrokModel returns a model.LLM backed by the x.ai chat completions API.
func NewGrokModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	m, err := newChatModel(config.ProviderGrok, grokBaseURL, cfg.APIKey, modelName)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewOpenRouterModel returns a model.LLM backed by OpenRouter. modelName is an
// OpenRouter slug such as "google/gemini-2.5-flash".
func NewOpenRouterModel(ctx context.Context, modelName string, cfg *genai.ClientConfig) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	m, err := newChatModel(config.ProviderOpenRouter, openRouterBaseURL, cfg.APIKey, modelName)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// NewCoachModel builds the model for the configured coach provider.
func NewCoachModel(ctx context.Context, cfg *config.Config) (model.LLM, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !cfg.CoachEnabled() {
		return nil, fmt.Errorf("no API key configured for coach provider %q", cfg.CoachProvider)
	}

	clientCfg := &genai.ClientConfig{APIKey: cfg.CoachAPIKey()}
	switch strings.ToLower(cfg.CoachProvider) {
	case config.ProviderGemini:
		clientCfg.Backend = genai.BackendGeminiAPI
		llm, err := gemini.NewModel(ctx, cfg.CoachModel, clientCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini model: %w", err)
		}
		return llm, nil
	case config.ProviderGrok:
		return NewGrokModel(ctx, cfg.CoachModel, clientCfg)
	case config.ProviderOpenRouter:
		return NewOpenRouterModel(ctx, cfg.CoachModel, clientCfg)
	default:
		return nil, fmt.Errorf("unknown coach provider %q", cfg.CoachProvider)
	}
}
