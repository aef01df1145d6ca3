package emotion

import (
	"fmt"
	"math"
)

// EmotionLabel is a discrete emotion derived from arousal and valence.
type EmotionLabel string

const (
	EmotionCalm       EmotionLabel = "Calm"
	EmotionEnthusiasm EmotionLabel = "Enthusiasm"
	EmotionStress     EmotionLabel = "Stress"
	EmotionFatigue    EmotionLabel = "Fatigue"
	EmotionUnknown    EmotionLabel = "Unknown"
)

// ColorTag is the display color attached to an EmotionLabel.
type ColorTag string

const (
	ColorGreen  ColorTag = "green"
	ColorYellow ColorTag = "yellow"
	ColorRed    ColorTag = "red"
	ColorBlue   ColorTag = "blue"
	ColorGray   ColorTag = "gray"
)

// Swatch returns the CSS color used to render the tag.
func (c ColorTag) Swatch() string {
	switch c {
	case ColorGreen:
		return "#0d2"
	case ColorYellow:
		return "#fd4"
	case ColorRed:
		return "#f77"
	case ColorBlue:
		return "#5da3ff"
	default:
		return "#888"
	}
}

const (
	DefaultHeartRateBaseline   = 70.0
	DefaultTemperatureBaseline = 33.0
)

// Reading is one manual physiological measurement.
type Reading struct {
	HeartRate       float64 `json:"heart_rate"`
	SkinTemperature float64 `json:"skin_temperature"`
}

// Baseline is the per-user reference used to normalize a Reading.
// Fields that are zero or not finite resolve to their defaults.
type Baseline struct {
	HeartRate   float64 `json:"heart_rate_baseline"`
	Temperature float64 `json:"temperature_baseline"`
}

// DefaultBaseline returns the population baseline.
func DefaultBaseline() Baseline {
	return Baseline{
		HeartRate:   DefaultHeartRateBaseline,
		Temperature: DefaultTemperatureBaseline,
	}
}

// Resolved returns b with missing fields replaced by defaults.
func (b Baseline) Resolved() Baseline {
	return Baseline{
		HeartRate:   orDefault(b.HeartRate, DefaultHeartRateBaseline),
		Temperature: orDefault(b.Temperature, DefaultTemperatureBaseline),
	}
}

// Or returns b with missing fields taken from fallback. Fields still missing
// after that resolve to defaults in Estimate.
func (b Baseline) Or(fallback Baseline) Baseline {
	return Baseline{
		HeartRate:   orDefault(b.HeartRate, fallback.HeartRate),
		Temperature: orDefault(b.Temperature, fallback.Temperature),
	}
}

func orDefault(value, fallback float64) float64 {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fallback
	}
	return value
}

// EmotionEstimate is the result of a single estimation.
type EmotionEstimate struct {
	Arousal        float64      `json:"arousal"`
	Valence        float64      `json:"valence"`
	Label          EmotionLabel `json:"label"`
	Color          ColorTag     `json:"color"`
	Recommendation string       `json:"recommendation"`
}

// String renders the estimate the way the widget displays it.
func (e EmotionEstimate) String() string {
	return fmt.Sprintf("A=%s V=%s %s (%s)", FormatScore(e.Arousal), FormatScore(e.Valence), e.Label, e.Color)
}

// FormatScore formats an arousal or valence score to two decimals.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
