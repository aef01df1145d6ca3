package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/easeaico/neuromirror/internal/emotion"
)

// baselineModel maps to the baseline_profiles table.
type baselineModel struct {
	UserID              string  `gorm:"primaryKey;size:128"`
	HeartRateBaseline   float64 `gorm:"not null"`
	TemperatureBaseline float64 `gorm:"not null"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (baselineModel) TableName() string {
	return "baseline_profiles"
}

// BaselineRepo accesses baseline profiles in PostgreSQL.
type BaselineRepo struct {
	db *gorm.DB
}

// NewBaselineRepo returns a BaselineRepo.
func NewBaselineRepo(db *gorm.DB) *BaselineRepo {
	return &BaselineRepo{db: db}
}

func (r *BaselineRepo) GetBaseline(ctx context.Context, userID string) (*emotion.BaselineProfile, error) {
	var model baselineModel
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, emotion.ErrBaselineNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baseline profile: %w", err)
	}
	profile := baselineFromModel(model)
	return &profile, nil
}

func (r *BaselineRepo) SaveBaseline(ctx context.Context, userID string, baseline emotion.Baseline) error {
	record := baselineModel{
		UserID:              userID,
		HeartRateBaseline:   baseline.HeartRate,
		TemperatureBaseline: baseline.Temperature,
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"heart_rate_baseline", "temperature_baseline", "updated_at"}),
	}).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to upsert baseline profile: %w", err)
	}
	return nil
}

func baselineFromModel(model baselineModel) emotion.BaselineProfile {
	return emotion.BaselineProfile{
		UserID: model.UserID,
		Baseline: emotion.Baseline{
			HeartRate:   model.HeartRateBaseline,
			Temperature: model.TemperatureBaseline,
		},
		UpdatedAt: model.UpdatedAt,
	}
}

// MemoryBaselineRepo keeps baseline profiles in process memory. It is used
// when no database is configured.
type MemoryBaselineRepo struct {
	mu       sync.RWMutex
	profiles map[string]emotion.BaselineProfile
	now      func() time.Time
}

// NewMemoryBaselineRepo returns an empty MemoryBaselineRepo.
func NewMemoryBaselineRepo() *MemoryBaselineRepo {
	return &MemoryBaselineRepo{
		profiles: make(map[string]emotion.BaselineProfile),
		now:      time.Now,
	}
}

func (r *MemoryBaselineRepo) GetBaseline(ctx context.Context, userID string) (*emotion.BaselineProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, emotion.ErrBaselineNotFound
	}
	return &profile, nil
}

func (r *MemoryBaselineRepo) SaveBaseline(ctx context.Context, userID string, baseline emotion.Baseline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[userID] = emotion.BaselineProfile{
		UserID:    userID,
		Baseline:  baseline,
		UpdatedAt: r.now().UTC(),
	}
	return nil
}
