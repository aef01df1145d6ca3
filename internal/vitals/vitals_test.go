package vitals

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/easeaico/neuromirror/internal/emotion"
)

func TestLevelForBoundaries(t *testing.T) {
	tests := []struct {
		metric Metric
		value  float64
		want   emotion.Level
	}{
		{HeartRate, 74.9, emotion.LevelGreen},
		{HeartRate, 75, emotion.LevelYellow},
		{HeartRate, 94.9, emotion.LevelYellow},
		{HeartRate, 95, emotion.LevelRed},
		{GSR, 3.49, emotion.LevelGreen},
		{GSR, 3.5, emotion.LevelYellow},
		{GSR, 6.0, emotion.LevelRed},
		{SkinTemp, 34.5, emotion.LevelGreen},
		{SkinTemp, 34.49, emotion.LevelYellow},
		{SkinTemp, 33.8, emotion.LevelYellow},
		{SkinTemp, 33.79, emotion.LevelRed},
		{"unknown", 1, emotion.LevelYellow},
	}
	for _, tt := range tests {
		if got := LevelFor(tt.metric, tt.value); got != tt.want {
			t.Fatalf("LevelFor(%s, %v): expected %s, got %s", tt.metric, tt.value, tt.want, got)
		}
	}
}

func TestPercentClampsToRange(t *testing.T) {
	if got := Percent(HeartRate, 55); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Percent(HeartRate, 90); got != 50 {
		t.Fatalf("expected 50, got %v", got)
	}
	if got := Percent(HeartRate, 200); got != 100 {
		t.Fatalf("expected 100, got %v", got)
	}
	if got := Percent(SkinTemp, 10); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := Percent("unknown", 10); got != 0 {
		t.Fatalf("expected 0 for unknown metric, got %v", got)
	}
}

func TestFormatPrecision(t *testing.T) {
	if got := Format(SkinTemp, 34.16); got != "34.2" {
		t.Fatalf("expected 34.2, got %s", got)
	}
	if got := Format(HeartRate, 81.6); got != "82" {
		t.Fatalf("expected 82, got %s", got)
	}
}

func TestSimulatorNextStaysInRange(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(7)), 0)
	if sim.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %v", sim.Interval())
	}
	for i := 0; i < 500; i++ {
		sample := sim.Next()
		if len(sample.Metrics) != len(Metrics) {
			t.Fatalf("expected %d metrics, got %d", len(Metrics), len(sample.Metrics))
		}
		for m, v := range sample.Metrics {
			p, _ := ProfileFor(m)
			if v.Value < p.Min || v.Value > p.Max {
				t.Fatalf("%s out of range: %v", m, v.Value)
			}
			if v.Level != LevelFor(m, v.Value) || v.Display != Format(m, v.Value) {
				t.Fatalf("%s inconsistent value: %+v", m, v)
			}
		}
	}
}

func TestSimulatorIsReproducibleWithSeed(t *testing.T) {
	a := NewSimulator(rand.New(rand.NewSource(42)), time.Second)
	b := NewSimulator(rand.New(rand.NewSource(42)), time.Second)
	for i := 0; i < 10; i++ {
		sa, sb := a.Next(), b.Next()
		for _, m := range Metrics {
			if sa.Metrics[m].Value != sb.Metrics[m].Value {
				t.Fatalf("expected identical samples, got %v and %v", sa.Metrics[m], sb.Metrics[m])
			}
		}
	}
}

func TestSimulatorRunStopsOnCancel(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(1)), 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan Sample)
	go sim.Run(ctx, out)

	for i := 0; i < 3; i++ {
		select {
		case <-out:
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for sample %d", i)
		}
	}
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("expected channel to close after cancel")
		}
	}
}

func TestSessionSeries(t *testing.T) {
	sim := NewSimulator(rand.New(rand.NewSource(3)), 0)

	initial := sim.InitialSeries(0)
	if len(initial.Labels) != DefaultSessionPoints || initial.Labels[0] != "1s" || initial.Labels[59] != "60s" {
		t.Fatalf("unexpected labels: %v", initial.Labels)
	}
	for i := range initial.Stress {
		if initial.Stress[i] < 30 || initial.Stress[i] > 75 {
			t.Fatalf("initial stress out of range at %d: %v", i, initial.Stress[i])
		}
		if initial.Calm[i] != 100-initial.Stress[i] {
			t.Fatalf("initial calm should mirror stress at %d", i)
		}
	}

	improved := sim.ImprovedSeries(30)
	if len(improved.Stress) != 30 {
		t.Fatalf("expected 30 points, got %d", len(improved.Stress))
	}
	for i := range improved.Stress {
		if improved.Stress[i] < 12 || improved.Stress[i] > 85 {
			t.Fatalf("improved stress out of range at %d: %v", i, improved.Stress[i])
		}
		if improved.Calm[i] < 15 || improved.Calm[i] > 95 {
			t.Fatalf("improved calm out of range at %d: %v", i, improved.Calm[i])
		}
	}
	if improved.Stress[29] >= improved.Stress[0] {
		t.Fatalf("expected stress to trend down: %v -> %v", improved.Stress[0], improved.Stress[29])
	}
}
