package emotion

import (
	"errors"
	"math"
	"testing"
)

const epsilon = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestEstimateAtBaselineIsCalm(t *testing.T) {
	cases := []Baseline{
		{},
		DefaultBaseline(),
		{HeartRate: 58, Temperature: 34.2},
		{HeartRate: 92.5, Temperature: 31.1},
	}
	for _, baseline := range cases {
		base := baseline.Resolved()
		got, err := Estimate(Reading{HeartRate: base.HeartRate, SkinTemperature: base.Temperature}, baseline)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Arousal != 0 || got.Valence != 0.12 {
			t.Fatalf("baseline %+v: expected A=0 V=0.12, got A=%v V=%v", baseline, got.Arousal, got.Valence)
		}
		if got.Label != EmotionCalm || got.Color != ColorGreen {
			t.Fatalf("baseline %+v: expected Calm/green, got %s/%s", baseline, got.Label, got.Color)
		}
	}
}

func TestEstimateScenarios(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		arousal float64
		valence float64
		label   EmotionLabel
		color   ColorTag
		display string
	}{
		{
			name:    "resting",
			reading: Reading{HeartRate: 70, SkinTemperature: 33.0},
			arousal: 0,
			valence: 0.12,
			label:   EmotionCalm,
			color:   ColorGreen,
			display: "A=0.00 V=0.12 Calm (green)",
		},
		{
			name:    "racing heart",
			reading: Reading{HeartRate: 110, SkinTemperature: 33.0},
			arousal: 0.7 * 40.0 / 12.0,
			valence: 0.2*(-40.0/12.0) + 0.12,
			label:   EmotionStress,
			color:   ColorRed,
			display: "A=2.33 V=-0.55 Stress (red)",
		},
		{
			name:    "cold skin",
			reading: Reading{HeartRate: 70, SkinTemperature: 30.0},
			arousal: 0.3 * (-3.0 / 0.6),
			valence: 0.8 + 0.12,
			label:   EmotionCalm,
			color:   ColorGreen,
			display: "A=-1.50 V=0.92 Calm (green)",
		},
		{
			name:    "warm and fast",
			reading: Reading{HeartRate: 82, SkinTemperature: 33.0},
			arousal: 0.7,
			valence: 0.2*(-1) + 0.12,
			label:   EmotionStress,
			color:   ColorRed,
			display: "A=0.70 V=-0.08 Stress (red)",
		},
		{
			name:    "slow and warm",
			reading: Reading{HeartRate: 70, SkinTemperature: 33.6},
			arousal: 0.3,
			valence: -0.8 + 0.12,
			label:   EmotionFatigue,
			color:   ColorBlue,
			display: "A=0.30 V=-0.68 Fatigue (blue)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Estimate(tt.reading, Baseline{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !approx(got.Arousal, tt.arousal) || !approx(got.Valence, tt.valence) {
				t.Fatalf("expected A=%v V=%v, got A=%v V=%v", tt.arousal, tt.valence, got.Arousal, got.Valence)
			}
			if got.Label != tt.label || got.Color != tt.color {
				t.Fatalf("expected %s/%s, got %s/%s", tt.label, tt.color, got.Label, got.Color)
			}
			if got.Recommendation != Recommendation(tt.label) {
				t.Fatalf("unexpected recommendation: %q", got.Recommendation)
			}
			if got.String() != tt.display {
				t.Fatalf("expected display %q, got %q", tt.display, got.String())
			}
		})
	}
}

func TestEstimateEnthusiasm(t *testing.T) {
	// Heart rate up, temperature slightly down but above the floor.
	got, err := Estimate(Reading{HeartRate: 82, SkinTemperature: 32.6}, Baseline{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.Arousal < 0.4 || got.Valence < 0 {
		t.Fatalf("expected high arousal and positive valence, got %s", got)
	}
	if got.Label != EmotionEnthusiasm || got.Color != ColorYellow {
		t.Fatalf("expected Enthusiasm/yellow, got %s/%s", got.Label, got.Color)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		arousal float64
		valence float64
		label   EmotionLabel
		color   ColorTag
	}{
		{0.4, 0, EmotionEnthusiasm, ColorYellow},
		{0.4, -1e-12, EmotionStress, ColorRed},
		{0.39999999, 0, EmotionCalm, ColorGreen},
		{0.39999999, -1e-12, EmotionFatigue, ColorBlue},
		{math.Inf(1), math.Inf(-1), EmotionStress, ColorRed},
		{math.NaN(), 0, EmotionUnknown, ColorGray},
		{0, math.NaN(), EmotionUnknown, ColorGray},
	}
	for _, tt := range tests {
		got := classify(tt.arousal, tt.valence)
		if got.label != tt.label || got.color != tt.color {
			t.Fatalf("classify(%v, %v): expected %s/%s, got %s/%s", tt.arousal, tt.valence, tt.label, tt.color, got.label, got.color)
		}
	}
	if Recommendation(EmotionUnknown) != "" {
		t.Fatalf("expected no recommendation for Unknown")
	}
}

func TestEstimateTemperatureFloor(t *testing.T) {
	base := DefaultBaseline()
	var first float64
	for i, temp := range []float64{32.3, 32.0, 31.0, 29.5, 25.0} {
		if (temp-base.Temperature)/0.6 >= -1 {
			t.Fatalf("temperature %v does not activate the floor", temp)
		}
		got, err := Estimate(Reading{HeartRate: 75, SkinTemperature: temp}, base)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if i == 0 {
			first = got.Valence
			continue
		}
		if got.Valence != first {
			t.Fatalf("expected valence to stay %v below the floor, got %v at %v", first, got.Valence, temp)
		}
	}
}

func TestEstimateIsDeterministic(t *testing.T) {
	reading := Reading{HeartRate: 97.3, SkinTemperature: 33.9}
	baseline := Baseline{HeartRate: 64, Temperature: 33.4}
	first, err := Estimate(reading, baseline)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := 0; i < 10; i++ {
		got, err := Estimate(reading, baseline)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != first {
			t.Fatalf("expected %+v, got %+v", first, got)
		}
	}
}

func TestEstimateRejectsNonFiniteReadings(t *testing.T) {
	readings := []Reading{
		{HeartRate: math.NaN(), SkinTemperature: 33},
		{HeartRate: 70, SkinTemperature: math.NaN()},
		{HeartRate: math.Inf(1), SkinTemperature: 33},
		{HeartRate: 70, SkinTemperature: math.Inf(-1)},
	}
	for _, reading := range readings {
		got, err := Estimate(reading, Baseline{})
		if err == nil {
			t.Fatalf("expected error for %+v", reading)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		var invalid *InvalidInputError
		if !errors.As(err, &invalid) || invalid.Field == "" {
			t.Fatalf("expected InvalidInputError with field, got %v", err)
		}
		if got != (EmotionEstimate{}) {
			t.Fatalf("expected no partial estimate, got %+v", got)
		}
	}
}

func TestBaselineFallsBackToDefaults(t *testing.T) {
	got := Baseline{HeartRate: math.NaN(), Temperature: math.Inf(1)}.Resolved()
	if got != DefaultBaseline() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	got = Baseline{HeartRate: 60}.Resolved()
	if got.HeartRate != 60 || got.Temperature != DefaultTemperatureBaseline {
		t.Fatalf("expected partial fallback, got %+v", got)
	}

	withNaN, err := Estimate(Reading{HeartRate: 80, SkinTemperature: 34}, Baseline{HeartRate: math.NaN()})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	withDefault, err := Estimate(Reading{HeartRate: 80, SkinTemperature: 34}, DefaultBaseline())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if withNaN != withDefault {
		t.Fatalf("expected NaN baseline to match default: %+v vs %+v", withNaN, withDefault)
	}
}

func TestParseReading(t *testing.T) {
	got, err := ParseReading(" 72 ", "33.4")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.HeartRate != 72 || got.SkinTemperature != 33.4 {
		t.Fatalf("unexpected reading: %+v", got)
	}

	for _, raw := range [][2]string{{"", "33"}, {"70", ""}, {"abc", "33"}, {"70", "NaN"}, {"+Inf", "33"}} {
		_, err := ParseReading(raw[0], raw[1])
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %q, got %v", raw, err)
		}
	}
}

func TestParseBaseline(t *testing.T) {
	if got := ParseBaseline("", "abc"); got != DefaultBaseline() {
		t.Fatalf("expected defaults, got %+v", got)
	}
	if got := ParseBaseline("0", "0"); got != DefaultBaseline() {
		t.Fatalf("expected zero to fall back, got %+v", got)
	}
	if got := ParseBaseline("62", "33.8"); got.HeartRate != 62 || got.Temperature != 33.8 {
		t.Fatalf("unexpected baseline: %+v", got)
	}
}

func TestParseOptional(t *testing.T) {
	for _, raw := range []string{"", "  ", "abc", "NaN", "Inf"} {
		if got := ParseOptional(raw); got != 0 {
			t.Fatalf("expected 0 for %q, got %v", raw, got)
		}
	}
	if got := ParseOptional(" 62.5 "); got != 62.5 {
		t.Fatalf("expected 62.5, got %v", got)
	}
}

func TestBaselineOr(t *testing.T) {
	stored := Baseline{HeartRate: 90, Temperature: 34}

	got := Baseline{HeartRate: 80}.Or(stored)
	if got.HeartRate != 80 || got.Temperature != 34 {
		t.Fatalf("expected explicit heart rate over stored temperature, got %+v", got)
	}
	got = Baseline{HeartRate: math.NaN()}.Or(stored)
	if got != stored {
		t.Fatalf("expected NaN field to take stored value, got %+v", got)
	}
	if got := (Baseline{}).Or(Baseline{}).Resolved(); got != DefaultBaseline() {
		t.Fatalf("expected defaults when nothing is set, got %+v", got)
	}
}

func TestColorSwatch(t *testing.T) {
	if ColorBlue.Swatch() != "#5da3ff" || ColorGray.Swatch() != "#888" {
		t.Fatalf("unexpected swatches: %s %s", ColorBlue.Swatch(), ColorGray.Swatch())
	}
}
