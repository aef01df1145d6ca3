package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/tips"
)

func TestMemoryBaselineRepoRoundTrip(t *testing.T) {
	repo := NewMemoryBaselineRepo()
	fixed := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	if _, err := repo.GetBaseline(context.Background(), "ana"); !errors.Is(err, emotion.ErrBaselineNotFound) {
		t.Fatalf("expected ErrBaselineNotFound, got %v", err)
	}

	if err := repo.SaveBaseline(context.Background(), "ana", emotion.Baseline{HeartRate: 61, Temperature: 33.7}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := repo.GetBaseline(context.Background(), "ana")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.UserID != "ana" || got.Baseline.HeartRate != 61 || got.Baseline.Temperature != 33.7 || !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestMemoryBaselineRepoWorksWithService(t *testing.T) {
	repo := NewMemoryBaselineRepo()
	service := emotion.NewService(repo, emotion.Baseline{})

	if err := service.SetBaseline(context.Background(), "ana", emotion.Baseline{HeartRate: 90, Temperature: 33}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	got, err := service.EstimateForUser(context.Background(), "ana", emotion.Reading{HeartRate: 90, SkinTemperature: 33})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Label != emotion.EmotionCalm {
		t.Fatalf("expected Calm at the user's baseline, got %s", got)
	}
}

func TestBaselineFromModel(t *testing.T) {
	updated := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	got := baselineFromModel(baselineModel{UserID: "leo", HeartRateBaseline: 66, TemperatureBaseline: 34, UpdatedAt: updated})
	if got.UserID != "leo" || got.Baseline != (emotion.Baseline{HeartRate: 66, Temperature: 34}) || !got.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected profile: %+v", got)
	}
}

func TestTipToModel(t *testing.T) {
	record, err := tipToModel(tips.Tip{Slug: "box-breathing", Title: "Box breathing", Body: "In 4s", Tags: []string{"breathing"}}, []float32{0.5, 0.25})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(record.Tags) != `["breathing"]` {
		t.Fatalf("unexpected tags: %s", record.Tags)
	}
	if record.Embedding == nil || len(record.Embedding.Slice()) != 2 {
		t.Fatalf("expected embedding to be set, got %v", record.Embedding)
	}

	bare, err := tipToModel(tips.Tip{Slug: "x"}, nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if bare.Tags != nil || bare.Embedding != nil {
		t.Fatalf("expected empty tags and embedding, got %+v", bare)
	}
}

func TestTagsFromJSON(t *testing.T) {
	tags := tagsFromJSON("box-breathing", []byte(`["breathing","focus"]`))
	if len(tags) != 2 || tags[0] != "breathing" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if tags := tagsFromJSON("box-breathing", []byte(`{"not":"a list"`)); tags != nil {
		t.Fatalf("expected no tags for corrupt json, got %v", tags)
	}
	if tags := tagsFromJSON("box-breathing", nil); tags != nil {
		t.Fatalf("expected no tags for empty column, got %v", tags)
	}
}
