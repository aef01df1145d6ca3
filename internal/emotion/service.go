package emotion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrBaselineNotFound is returned by a BaselineRepo with no profile for a user.
var ErrBaselineNotFound = errors.New("baseline profile not found")

// BaselineProfile is a stored per-user baseline.
type BaselineProfile struct {
	UserID    string    `json:"user_id"`
	Baseline  Baseline  `json:"baseline"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaselineRepo defines baseline profile fetch and update behavior.
type BaselineRepo interface {
	GetBaseline(ctx context.Context, userID string) (*BaselineProfile, error)
	SaveBaseline(ctx context.Context, userID string, baseline Baseline) error
}

// Service estimates emotions against stored user baselines.
type Service struct {
	baselines BaselineRepo
	defaults  Baseline
}

// NewService returns a new emotion service. A zero defaults value uses the
// population baseline.
func NewService(baselines BaselineRepo, defaults Baseline) *Service {
	return &Service{
		baselines: baselines,
		defaults:  defaults.Resolved(),
	}
}

// Baseline returns the baseline for userID, falling back to the service defaults.
func (s *Service) Baseline(ctx context.Context, userID string) (Baseline, error) {
	if s == nil {
		return DefaultBaseline(), nil
	}
	if userID == "" || s.baselines == nil {
		return s.defaults, nil
	}

	profile, err := s.baselines.GetBaseline(ctx, userID)
	if errors.Is(err, ErrBaselineNotFound) || (err == nil && profile == nil) {
		return s.defaults, nil
	}
	if err != nil {
		return Baseline{}, fmt.Errorf("failed to get baseline for %s: %w", userID, err)
	}

	b := profile.Baseline
	if b.HeartRate == 0 {
		b.HeartRate = s.defaults.HeartRate
	}
	if b.Temperature == 0 {
		b.Temperature = s.defaults.Temperature
	}
	return b.Resolved(), nil
}

// EstimateForUser estimates reading against the user's stored baseline.
func (s *Service) EstimateForUser(ctx context.Context, userID string, reading Reading) (EmotionEstimate, error) {
	baseline, err := s.Baseline(ctx, userID)
	if err != nil {
		return EmotionEstimate{}, err
	}
	estimate, err := Estimate(reading, baseline)
	if err != nil {
		return EmotionEstimate{}, err
	}
	slog.Debug("emotion estimated", "user_id", userID, "label", estimate.Label, "arousal", estimate.Arousal, "valence", estimate.Valence)
	return estimate, nil
}

// SetBaseline stores a user's baseline. Both fields must be finite and positive.
func (s *Service) SetBaseline(ctx context.Context, userID string, baseline Baseline) error {
	if s == nil || s.baselines == nil {
		return fmt.Errorf("baseline repo is nil")
	}
	if userID == "" {
		return &InvalidInputError{Field: "user_id", Value: userID}
	}
	if !isFinite(baseline.HeartRate) || baseline.HeartRate <= 0 {
		return &InvalidInputError{Field: "heart_rate_baseline", Value: formatFloat(baseline.HeartRate)}
	}
	if !isFinite(baseline.Temperature) || baseline.Temperature <= 0 {
		return &InvalidInputError{Field: "temperature_baseline", Value: formatFloat(baseline.Temperature)}
	}
	if err := s.baselines.SaveBaseline(ctx, userID, baseline); err != nil {
		return fmt.Errorf("failed to save baseline: %w", err)
	}
	slog.Info("baseline updated", "user_id", userID, "heart_rate", baseline.HeartRate, "temperature", baseline.Temperature)
	return nil
}
