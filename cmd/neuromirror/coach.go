package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"google.golang.org/adk/agent"
	"google.golang.org/adk/cmd/launcher"
	"google.golang.org/adk/cmd/launcher/full"
	"google.golang.org/adk/session"
	"google.golang.org/adk/session/database"
	"gorm.io/driver/postgres"

	"github.com/easeaico/neuromirror/internal/coach"
	"github.com/easeaico/neuromirror/internal/config"
	"github.com/easeaico/neuromirror/internal/emotion"
)

func newCoachCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coach",
		Short: "Calming advice from the configured LLM provider",
	}
	cmd.AddCommand(newCoachAdviseCmd(cfg))
	cmd.AddCommand(newCoachRunCmd(cfg))
	return cmd
}

func newCoachAdviseCmd(cfg *config.Config) *cobra.Command {
	var heartRate, temperature, userID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "advise --hr <bpm> --temp <celsius>",
		Short: "Estimate a reading and ask the coach for structured advice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reading, err := emotion.ParseReading(heartRate, temperature)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			estimate, err := a.emotions.EstimateForUser(cmd.Context(), userID, reading)
			if err != nil {
				return err
			}
			advice := a.coach.Advise(cmd.Context(), estimate)

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"estimate": estimate, "advice": advice})
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, estimate.String())
			_, _ = fmt.Fprintf(out, "%s (%s)\n", advice.Summary, advice.Source)
			for i, step := range advice.Steps {
				_, _ = fmt.Fprintf(out, "%d. %s\n", i+1, step)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&heartRate, "hr", "", "heart rate in bpm")
	cmd.Flags().StringVar(&temperature, "temp", "", "skin temperature in °C")
	cmd.Flags().StringVar(&userID, "user", "", "use the stored baseline of this user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// newCoachRunCmd hands the remaining arguments to the ADK launcher, so
// "coach run console" and "coach run web api" behave like the ADK CLI.
func newCoachRunCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:                "run [launcher args]",
		Short:              "Run the coach agent in the ADK console or web launcher",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			if a.llm == nil {
				return fmt.Errorf("no API key configured for coach provider %q", cfg.CoachProvider)
			}

			coachAgent, err := coach.NewAgent(a.llm, a.toolbox())
			if err != nil {
				return err
			}
			sessionService, err := newSessionService(cfg)
			if err != nil {
				return err
			}

			l := full.NewLauncher()
			err = l.Execute(ctx, &launcher.Config{
				SessionService: sessionService,
				AgentLoader:    agent.NewSingleLoader(coachAgent),
			}, args)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("failed to run coach agent: %w\n\n%s", err, l.CommandLineSyntax())
			}
			return nil
		},
	}
}

// newSessionService keeps conversations in PostgreSQL when a database is
// configured and in memory otherwise.
func newSessionService(cfg *config.Config) (session.Service, error) {
	if cfg.DatabaseURL == "" {
		return session.InMemoryService(), nil
	}
	sessionService, err := database.NewSessionService(postgres.Open(cfg.DatabaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create session service: %w", err)
	}
	return sessionService, nil
}
