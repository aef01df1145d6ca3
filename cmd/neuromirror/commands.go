package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/easeaico/neuromirror/internal/config"
	"github.com/easeaico/neuromirror/internal/emotion"
	"github.com/easeaico/neuromirror/internal/vitals"
)

func newEstimateCmd(cfg *config.Config) *cobra.Command {
	var heartRate, temperature, hrBaseline, tempBaseline, userID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate --hr <bpm> --temp <celsius>",
		Short: "Estimate arousal, valence and an emotion label from one reading",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reading, err := emotion.ParseReading(heartRate, temperature)
			if err != nil {
				return err
			}

			emotions := emotion.NewService(nil, emotion.Baseline{HeartRate: cfg.HeartRateBaseline, Temperature: cfg.TemperatureBaseline})
			if userID != "" {
				a, err := newApp(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				defer a.Close()
				emotions = a.emotions
			}

			estimate, err := estimateWithFlags(cmd.Context(), emotions, userID, reading, hrBaseline, tempBaseline)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), estimate)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), estimate.String())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "swatch: %s\n", estimate.Color.Swatch())
			if estimate.Recommendation != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tip: %s\n", estimate.Recommendation)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&heartRate, "hr", "", "heart rate in bpm")
	cmd.Flags().StringVar(&temperature, "temp", "", "skin temperature in °C")
	cmd.Flags().StringVar(&hrBaseline, "hr-baseline", "", "heart rate baseline (default: stored profile, then HR_BASELINE)")
	cmd.Flags().StringVar(&tempBaseline, "temp-baseline", "", "temperature baseline (default: stored profile, then TEMP_BASELINE)")
	cmd.Flags().StringVar(&userID, "user", "", "use the stored baseline of this user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// estimateWithFlags lets usable baseline flags override the user's stored
// profile field by field. Unset or unparseable flags keep the stored value.
func estimateWithFlags(ctx context.Context, emotions *emotion.Service, userID string, reading emotion.Reading, hrBaseline, tempBaseline string) (emotion.EmotionEstimate, error) {
	stored, err := emotions.Baseline(ctx, userID)
	if err != nil {
		return emotion.EmotionEstimate{}, err
	}
	explicit := emotion.Baseline{
		HeartRate:   emotion.ParseOptional(hrBaseline),
		Temperature: emotion.ParseOptional(tempBaseline),
	}
	return emotion.Estimate(reading, explicit.Or(stored))
}

func newExpressionCmd() *cobra.Command {
	var confidence float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "expression [expression]",
		Short: "Map a detected facial expression to a level and a tip",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reading := emotion.NoFace()
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				reading = emotion.ReadExpression(emotion.Expression(args[0]), confidence)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), reading)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s [%s]\ntip: %s\n", reading.Badge, reading.Level, reading.Recommendation)
			return nil
		},
	}
	cmd.Flags().Float64Var(&confidence, "confidence", 1, "detector confidence in [0,1]")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newVitalsCmd(cfg *config.Config) *cobra.Command {
	var count int
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Print simulated heart rate, GSR and skin temperature samples",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				interval = cfg.VitalsInterval
			}
			sim := vitals.NewSimulator(nil, interval)
			out := cmd.OutOrStdout()

			printSample(out, sim.Next())
			if count == 1 {
				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			samples := make(chan vitals.Sample)
			go sim.Run(ctx, samples)
			printed := 1
			for sample := range samples {
				printSample(out, sample)
				printed++
				if count > 0 && printed >= count {
					return nil
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 1, "number of samples, 0 streams until interrupted")
	cmd.Flags().DurationVar(&interval, "interval", 0, "sample interval (default VITALS_INTERVAL)")
	return cmd
}

func printSample(w io.Writer, sample vitals.Sample) {
	parts := make([]string, 0, len(vitals.Metrics))
	for _, m := range vitals.Metrics {
		v := sample.Metrics[m]
		parts = append(parts, fmt.Sprintf("%s=%s [%s %.0f%%]", m, v.Display, v.Level, v.Percent))
	}
	_, _ = fmt.Fprintf(w, "%s %s\n", sample.At.Format(time.TimeOnly), strings.Join(parts, " "))
}

func newSessionCmd() *cobra.Command {
	var improved, asJSON bool
	var points int
	var seed int64

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Print a simulated stress/calm session series",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rng *rand.Rand
			if seed != 0 {
				rng = rand.New(rand.NewSource(seed))
			}
			sim := vitals.NewSimulator(rng, 0)

			series := sim.InitialSeries(points)
			if improved {
				series = sim.ImprovedSeries(points)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), series)
			}
			for i, label := range series.Labels {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tstress=%.1f\tcalm=%.1f\n", label, series.Stress[i], series.Calm[i])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&improved, "improved", false, "simulate the series after an exercise")
	cmd.Flags().IntVar(&points, "points", vitals.DefaultSessionPoints, "number of points")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed, 0 uses the clock")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
