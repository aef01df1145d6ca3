// Package vitals simulates dashboard readings and grades them with
// traffic-light levels.
package vitals

import (
	"fmt"
	"math"

	"github.com/easeaico/neuromirror/internal/emotion"
)

// Metric identifies a simulated physiological signal.
type Metric string

const (
	HeartRate Metric = "heart_rate"
	GSR       Metric = "gsr"
	SkinTemp  Metric = "skin_temp"
)

// Metrics lists the dashboard metrics in display order.
var Metrics = []Metric{HeartRate, GSR, SkinTemp}

// Profile describes the display range and simulation parameters of a metric.
type Profile struct {
	Unit      string
	Min       float64
	Max       float64
	Center    float64
	Jitter    float64
	Precision int
}

var profiles = map[Metric]Profile{
	HeartRate: {Unit: "bpm", Min: 55, Max: 125, Center: 82, Jitter: 16, Precision: 0},
	GSR:       {Unit: "µS", Min: 0.8, Max: 9.5, Center: 4.2, Jitter: 2.3, Precision: 0},
	SkinTemp:  {Unit: "°C", Min: 32.0, Max: 36.2, Center: 34.1, Jitter: 0.9, Precision: 1},
}

// ProfileFor returns the profile of m.
func ProfileFor(m Metric) (Profile, bool) {
	s, ok := profiles[m]
	return s, ok
}

// LevelFor grades a metric value. Lower skin temperature is worse, since
// vasoconstriction tracks stress.
func LevelFor(m Metric, value float64) emotion.Level {
	switch m {
	case HeartRate:
		switch {
		case value < 75:
			return emotion.LevelGreen
		case value < 95:
			return emotion.LevelYellow
		default:
			return emotion.LevelRed
		}
	case GSR:
		switch {
		case value < 3.5:
			return emotion.LevelGreen
		case value < 6.0:
			return emotion.LevelYellow
		default:
			return emotion.LevelRed
		}
	case SkinTemp:
		switch {
		case value >= 34.5:
			return emotion.LevelGreen
		case value >= 33.8:
			return emotion.LevelYellow
		default:
			return emotion.LevelRed
		}
	default:
		return emotion.LevelYellow
	}
}

// Percent maps value into [0,100] over the metric's display range.
func Percent(m Metric, value float64) float64 {
	s, ok := profiles[m]
	if !ok || s.Max == s.Min {
		return 0
	}
	return clamp(remap(value, s.Min, s.Max, 0, 100), 0, 100)
}

// Format renders value with the metric's display precision.
func Format(m Metric, value float64) string {
	return fmt.Sprintf("%.*f", profiles[m].Precision, value)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func remap(v, inMin, inMax, outMin, outMax float64) float64 {
	return (v-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}
