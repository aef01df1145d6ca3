// Package main is the NeuroMirror command line: one-shot estimates, the
// simulated dashboard, the tip library, the HTTP API and the coach agent.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/easeaico/neuromirror/internal/config"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&cfg).ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "neuromirror",
		Short:         "Arousal/valence emotion estimates from heart rate and skin temperature",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newEstimateCmd(cfg))
	root.AddCommand(newExpressionCmd())
	root.AddCommand(newVitalsCmd(cfg))
	root.AddCommand(newSessionCmd())
	root.AddCommand(newTipsCmd(cfg))
	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newCoachCmd(cfg))
	return root
}
