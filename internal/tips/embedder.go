package tips

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// EmbeddingDimensions is the vector size stored for each tip.
const EmbeddingDimensions = 768

const defaultEmbeddingModel = "text-embedding-004"

// Embedder maps tips and free-text queries into the same vector space.
type Embedder interface {
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	EmbedTip(ctx context.Context, tip Tip) ([]float32, error)
}

// GeminiEmbedder embeds with the Gemini embeddings API. Tips are embedded as
// retrieval documents titled by Tip.Title; queries as retrieval queries.
type GeminiEmbedder struct {
	models *genai.Models
	model  string
}

// NewGeminiEmbedder returns an embedder for modelName, or the default model
// when modelName is empty.
func NewGeminiEmbedder(ctx context.Context, apiKey, modelName string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google api key is required for tip embeddings")
	}
	if modelName == "" {
		modelName = defaultEmbeddingModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiEmbedder{models: client.Models, model: modelName}, nil
}

// EmbedQuery embeds what the user said they need.
func (e *GeminiEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	return e.embed(ctx, query, &genai.EmbedContentConfig{TaskType: "RETRIEVAL_QUERY"})
}

// EmbedTip embeds a tip's body and tags under its title.
func (e *GeminiEmbedder) EmbedTip(ctx context.Context, tip Tip) ([]float32, error) {
	return e.embed(ctx, tipDocument(tip), &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_DOCUMENT",
		Title:    tip.Title,
	})
}

func (e *GeminiEmbedder) embed(ctx context.Context, text string, cfg *genai.EmbedContentConfig) ([]float32, error) {
	dims := int32(EmbeddingDimensions)
	cfg.OutputDimensionality = &dims

	resp, err := e.models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to embed %s: %w", strings.ToLower(cfg.TaskType), err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, fmt.Errorf("empty embedding response from %s", e.model)
	}
	return fitDimensions(resp.Embeddings[0].Values, e.model)
}

// tipDocument is the text embedded for a tip. The title travels separately.
func tipDocument(tip Tip) string {
	doc := tip.Body
	if len(tip.Tags) > 0 {
		doc += "\nHelps with: " + strings.Join(tip.Tags, ", ")
	}
	return doc
}

// fitDimensions truncates longer vectors to the pgvector column size.
// Shorter vectors cannot be stored.
func fitDimensions(values []float32, model string) ([]float32, error) {
	if len(values) < EmbeddingDimensions {
		return nil, fmt.Errorf("embedding from %s has %d dimensions, want %d", model, len(values), EmbeddingDimensions)
	}
	if len(values) > EmbeddingDimensions {
		slog.Warn("truncating tip embedding", "model", model, "dimensions", len(values))
	}
	return values[:EmbeddingDimensions], nil
}
