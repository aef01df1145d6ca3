// Package main provides the operator CLI for deployment and operations tasks.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/easeaico/neuromirror/internal/config"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "operator",
		Short:         "neuromirror operator - deployment and operations CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "neuromirror operator v%s\n", version)
		},
	})
	return root
}

// databaseURL returns DATABASE_URL or an error; operator commands need
// nothing else from the environment.
func databaseURL() (string, error) {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL environment variable is required")
	}
	return cfg.DatabaseURL, nil
}
