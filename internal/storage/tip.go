package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"github.com/easeaico/neuromirror/internal/tips"
)

// tipModel maps to the tips table.
type tipModel struct {
	ID    int    `gorm:"primaryKey"`
	Slug  string `gorm:"uniqueIndex;size:128;not null"`
	Title string `gorm:"size:255;not null"`
	Body  string `gorm:"type:text;not null"`
	// Tags is stored as JSONB.
	Tags      json.RawMessage  `gorm:"type:jsonb"`
	Embedding *pgvector.Vector `gorm:"type:vector(768)"`
	CreatedAt time.Time
}

func (tipModel) TableName() string {
	return "tips"
}

// TipRepo accesses stored tips.
type TipRepo struct {
	db *gorm.DB
}

// NewTipRepo returns a TipRepo.
func NewTipRepo(db *gorm.DB) *TipRepo {
	return &TipRepo{db: db}
}

func (r *TipRepo) ListSlugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if err := r.db.WithContext(ctx).Model(&tipModel{}).Order("slug ASC").Pluck("slug", &slugs).Error; err != nil {
		return nil, fmt.Errorf("failed to list tip slugs: %w", err)
	}
	return slugs, nil
}

func (r *TipRepo) AddTip(ctx context.Context, tip tips.Tip, embedding []float32) error {
	record, err := tipToModel(tip, embedding)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to insert tip: %w", err)
	}
	return nil
}

// tipRow is a similarity search result row.
type tipRow struct {
	Slug       string
	Title      string
	Body       string
	Tags       json.RawMessage
	Similarity float64
}

func (r *TipRepo) SearchSimilar(ctx context.Context, embedding []float32, topK int) ([]tips.Match, error) {
	if len(embedding) == 0 {
		return nil, nil
	}

	var rows []tipRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT slug, title, body, tags, 1 - (embedding <=> ?) AS similarity
		FROM tips
		WHERE embedding IS NOT NULL
		ORDER BY embedding <=> ?
		LIMIT ?`, pgvector.NewVector(embedding), pgvector.NewVector(embedding), topK).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to search similar tips: %w", err)
	}

	matches := make([]tips.Match, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, tips.Match{
			Tip:   tips.Tip{Slug: row.Slug, Title: row.Title, Body: row.Body, Tags: tagsFromJSON(row.Slug, row.Tags)},
			Score: row.Similarity,
		})
	}
	return matches, nil
}

func tipToModel(tip tips.Tip, embedding []float32) (tipModel, error) {
	tags, err := marshalJSON(tip.Tags)
	if err != nil {
		return tipModel{}, fmt.Errorf("failed to encode tip tags: %w", err)
	}
	var vector *pgvector.Vector
	if len(embedding) > 0 {
		v := pgvector.NewVector(embedding)
		vector = &v
	}
	return tipModel{
		Slug:      tip.Slug,
		Title:     tip.Title,
		Body:      tip.Body,
		Tags:      tags,
		Embedding: vector,
	}, nil
}

// marshalJSON encodes a value into JSONB, returning nil for empty values.
func marshalJSON(value any) (json.RawMessage, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return json.RawMessage(raw), nil
}

// tagsFromJSON decodes a tags column. Corrupt JSON is logged and yields no tags
// so one bad row does not fail the whole search.
func tagsFromJSON(slug string, raw json.RawMessage) []string {
	var tags []string
	if err := unmarshalJSON(raw, &tags); err != nil {
		slog.Warn("failed to decode tip tags", "slug", slug, "error", err.Error())
		return nil
	}
	return tags
}

// unmarshalJSON decodes JSONB into the provided target.
func unmarshalJSON(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
