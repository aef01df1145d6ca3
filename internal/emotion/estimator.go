// Package emotion estimates arousal, valence and a discrete emotion from
// heart rate and skin temperature, and maps face expressions to levels.
package emotion

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	heartRateScale   = 12.0
	temperatureScale = 0.6

	arousalHeartRateWeight   = 0.7
	arousalTemperatureWeight = 0.3

	valenceHeartRateWeight   = 0.2
	valenceTemperatureWeight = 0.8
	// valenceTemperatureFloor caps how far a temperature drop can pull valence down.
	valenceTemperatureFloor = -1.0
	// valenceBias is a hand-tuned calibration constant that nudges borderline
	// readings toward Calm. Acceptance examples depend on its exact value.
	valenceBias = 0.12

	arousalThreshold = 0.4
	valenceThreshold = 0.0
)

// ErrInvalidInput marks readings that cannot be estimated.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError reports which required reading was rejected.
type InvalidInputError struct {
	Field string
	Value string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s must be a finite number, got %q", e.Field, e.Value)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// Estimate maps a reading and a baseline to an EmotionEstimate. It has no
// side effects and is safe for concurrent use.
func Estimate(reading Reading, baseline Baseline) (EmotionEstimate, error) {
	if !isFinite(reading.HeartRate) {
		return EmotionEstimate{}, &InvalidInputError{Field: "heart_rate", Value: formatFloat(reading.HeartRate)}
	}
	if !isFinite(reading.SkinTemperature) {
		return EmotionEstimate{}, &InvalidInputError{Field: "skin_temperature", Value: formatFloat(reading.SkinTemperature)}
	}

	base := baseline.Resolved()
	zHeartRate := (reading.HeartRate - base.HeartRate) / heartRateScale
	zTemperature := (reading.SkinTemperature - base.Temperature) / temperatureScale

	arousal := arousalHeartRateWeight*zHeartRate + arousalTemperatureWeight*zTemperature
	valence := valenceHeartRateWeight*(-zHeartRate) +
		valenceTemperatureWeight*(-math.Max(zTemperature, valenceTemperatureFloor)) +
		valenceBias

	rule := classify(arousal, valence)
	return EmotionEstimate{
		Arousal:        arousal,
		Valence:        valence,
		Label:          rule.label,
		Color:          rule.color,
		Recommendation: rule.recommendation,
	}, nil
}

type quadrantRule struct {
	highArousal    bool
	highValence    bool
	label          EmotionLabel
	color          ColorTag
	recommendation string
}

// quadrants is the decision table over (arousal >= 0.4, valence >= 0).
var quadrants = []quadrantRule{
	{highArousal: false, highValence: true, label: EmotionCalm, color: ColorGreen,
		recommendation: "Keep your breathing at 4-4-6."},
	{highArousal: true, highValence: true, label: EmotionEnthusiasm, color: ColorYellow,
		recommendation: "Channel the energy: 2 minutes of 4-2-4 breathing."},
	{highArousal: true, highValence: false, label: EmotionStress, color: ColorRed,
		recommendation: "Do 1 minute of 4-4-6 breathing while looking at a fixed point."},
	{highArousal: false, highValence: false, label: EmotionFatigue, color: ColorBlue,
		recommendation: "Hydrate and take 5 deep breaths."},
}

var unknownRule = quadrantRule{label: EmotionUnknown, color: ColorGray}

func classify(arousal, valence float64) quadrantRule {
	if math.IsNaN(arousal) || math.IsNaN(valence) {
		return unknownRule
	}
	highArousal := arousal >= arousalThreshold
	highValence := valence >= valenceThreshold
	for _, rule := range quadrants {
		if rule.highArousal == highArousal && rule.highValence == highValence {
			return rule
		}
	}
	return unknownRule
}

// Recommendation returns the guidance attached to label.
func Recommendation(label EmotionLabel) string {
	for _, rule := range quadrants {
		if rule.label == label {
			return rule.recommendation
		}
	}
	return ""
}

// ParseReading converts raw form values into a Reading. Empty or
// non-numeric values are rejected, never coerced to zero.
func ParseReading(heartRate, skinTemperature string) (Reading, error) {
	hr, err := parseRequired("heart_rate", heartRate)
	if err != nil {
		return Reading{}, err
	}
	temp, err := parseRequired("skin_temperature", skinTemperature)
	if err != nil {
		return Reading{}, err
	}
	return Reading{HeartRate: hr, SkinTemperature: temp}, nil
}

// ParseBaseline converts raw form values into a Baseline. Unparseable
// values fall back to defaults.
func ParseBaseline(heartRate, temperature string) Baseline {
	return Baseline{
		HeartRate:   ParseOptional(heartRate),
		Temperature: ParseOptional(temperature),
	}.Resolved()
}

func parseRequired(field, raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || !isFinite(value) {
		return 0, &InvalidInputError{Field: field, Value: raw}
	}
	return value, nil
}

// ParseOptional parses an optional baseline field. Empty, non-numeric and
// non-finite values yield 0, which baselines treat as missing.
func ParseOptional(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || !isFinite(value) {
		return 0
	}
	return value
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
