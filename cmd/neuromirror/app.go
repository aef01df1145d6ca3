package main

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/adk/model"

	"github.com/easeaico/neuromirror/internal/coach"
	"github.com/easeaico/neuromirror/internal/config"
	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/models"
	"github.com/easeaico/neuromirror/internal/storage"
	"github.com/easeaico/neuromirror/internal/tips"
	"github.com/easeaico/neuromirror/internal/vitals"
)

// app wires services from config. The database and the LLM are optional:
// without them baselines live in memory, tips fall back to keyword search
// and the coach returns static advice.
type app struct {
	cfg      *config.Config
	store    *storage.Store
	emotions *emotion.Service
	tips     *tips.Service
	vitals   *vitals.Simulator
	coach    *coach.Coach
	llm      model.LLM
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, vitals: vitals.NewSimulator(nil, cfg.VitalsInterval)}

	var baselines emotion.BaselineRepo = storage.NewMemoryBaselineRepo()
	var tipRepo tips.Repo
	if cfg.DatabaseURL != "" {
		store, err := storage.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.store = store
		baselines = store.Baselines
		tipRepo = store.Tips
	} else {
		slog.Info("DATABASE_URL not set, baselines kept in memory")
	}

	defaults := emotion.Baseline{HeartRate: cfg.HeartRateBaseline, Temperature: cfg.TemperatureBaseline}
	a.emotions = emotion.NewService(baselines, defaults)

	var embedder tips.Embedder
	if cfg.EmbeddingsEnabled() && tipRepo != nil {
		e, err := tips.NewGeminiEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create embedder: %w", err)
		}
		embedder = e
	}
	a.tips = tips.NewService(embedder, tipRepo, cfg.TipsTopK, nil)

	llm, err := a.coachModel(ctx)
	if err != nil {
		slog.Warn("coach model unavailable, using static advice", "provider", cfg.CoachProvider, "error", err.Error())
	}
	a.llm = llm
	a.coach, err = coach.New(llm)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// coachModel returns nil without error when no provider key is configured.
func (a *app) coachModel(ctx context.Context) (model.LLM, error) {
	if !a.cfg.CoachEnabled() {
		return nil, nil
	}
	return models.NewCoachModel(ctx, a.cfg)
}

func (a *app) toolbox() coach.Toolbox {
	return coach.Toolbox{Emotions: a.emotions, Tips: a.tips}
}

// newChat returns nil when no coach model is configured.
func (a *app) newChat() (*coach.Chat, error) {
	if a.llm == nil {
		return nil, nil
	}
	coachAgent, err := coach.NewAgent(a.llm, a.toolbox())
	if err != nil {
		return nil, err
	}
	return coach.NewChat(coachAgent)
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
}
