package vitals

import "strconv"

// DefaultSessionPoints is the number of one-second points in a session chart.
const DefaultSessionPoints = 60

// SessionSeries is the stress/calm data behind the results chart.
type SessionSeries struct {
	Labels []string  `json:"labels"`
	Stress []float64 `json:"stress"`
	Calm   []float64 `json:"calm"`
}

// InitialSeries is a flat, high-stress series before any exercise.
func (s *Simulator) InitialSeries(points int) SessionSeries {
	series := newSeries(points)
	for i := range series.Stress {
		stress := clamp(70-float64(i)*0.2+s.uniform(4), 30, 75)
		series.Stress[i] = stress
		series.Calm[i] = 100 - stress
	}
	return series
}

// ImprovedSeries simulates a session where stress trends down and calm up.
func (s *Simulator) ImprovedSeries(points int) SessionSeries {
	series := newSeries(points)
	for i := range series.Stress {
		stress := clamp(78-float64(i)*0.8+s.uniform(3), 12, 85)
		series.Stress[i] = stress
		series.Calm[i] = clamp(100-stress+s.uniform(2), 15, 95)
	}
	return series
}

func newSeries(points int) SessionSeries {
	if points <= 0 {
		points = DefaultSessionPoints
	}
	series := SessionSeries{
		Labels: make([]string, points),
		Stress: make([]float64, points),
		Calm:   make([]float64, points),
	}
	for i := range series.Labels {
		series.Labels[i] = strconv.Itoa(i+1) + "s"
	}
	return series
}
