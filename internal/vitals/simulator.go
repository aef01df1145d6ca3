package vitals

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/easeaico/neuromirror/internal/emotion"
)

// DefaultInterval is the dashboard refresh period.
const DefaultInterval = time.Second

// Value is one graded metric value.
type Value struct {
	Value   float64       `json:"value"`
	Display string        `json:"display"`
	Percent float64       `json:"percent"`
	Level   emotion.Level `json:"level"`
}

// Sample is one simulated dashboard refresh.
type Sample struct {
	At      time.Time        `json:"at"`
	Metrics map[Metric]Value `json:"metrics"`
}

// Simulator produces jittered readings around each metric's center.
type Simulator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	interval time.Duration
	now      func() time.Time
}

// NewSimulator returns a Simulator. A nil rng seeds from the clock and a
// non-positive interval uses DefaultInterval.
func NewSimulator(rng *rand.Rand, interval time.Duration) *Simulator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Simulator{
		rng:      rng,
		interval: interval,
		now:      time.Now,
	}
}

// Interval returns the refresh period.
func (s *Simulator) Interval() time.Duration {
	return s.interval
}

// Next draws one sample.
func (s *Simulator) Next() Sample {
	s.mu.Lock()
	defer s.mu.Unlock()

	sample := Sample{
		At:      s.now().UTC(),
		Metrics: make(map[Metric]Value, len(Metrics)),
	}
	for _, m := range Metrics {
		p := profiles[m]
		v := clamp(s.around(p.Center, p.Jitter), p.Min, p.Max)
		sample.Metrics[m] = Value{
			Value:   v,
			Display: Format(m, v),
			Percent: Percent(m, v),
			Level:   LevelFor(m, v),
		}
	}
	return sample
}

// Run sends a sample every interval until ctx is done. It closes out on return.
func (s *Simulator) Run(ctx context.Context, out chan<- Sample) {
	defer close(out)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Debug("vitals simulator started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			slog.Debug("vitals simulator stopped", "reason", ctx.Err())
			return
		case <-ticker.C:
			select {
			case out <- s.Next():
			case <-ctx.Done():
				return
			}
		}
	}
}

// around returns base + U(-1,1)*jitter. Callers hold mu.
func (s *Simulator) around(base, jitter float64) float64 {
	return base + (s.rng.Float64()*2-1)*jitter
}

// uniform returns U(-1,1)*jitter under the simulator lock.
func (s *Simulator) uniform(jitter float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.around(0, jitter)
}
