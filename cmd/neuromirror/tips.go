package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/easeaico/neuromirror/internal/config"
)

func newTipsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tips",
		Short: "Browse and search the calming-tip library",
	}
	cmd.AddCommand(newTipsRandomCmd(cfg))
	cmd.AddCommand(newTipsSearchCmd(cfg))
	cmd.AddCommand(newTipsSeedCmd(cfg))
	return cmd
}

func newTipsRandomCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "random",
		Short: "Print a random tip",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			tip := a.tips.Random()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", tip.Title, tip.Body)
			return nil
		},
	}
}

func newTipsSearchCmd(cfg *config.Config) *cobra.Command {
	var k int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find tips matching a description of how you feel",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			matches, err := a.tips.Search(cmd.Context(), strings.Join(args, " "), k)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			if len(matches) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no matching tips")
				return nil
			}
			for _, m := range matches {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.2f\t%s: %s\n", m.Score, m.Tip.Title, m.Tip.Body)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&k, "top", "k", 0, "number of results (default TIPS_TOP_K)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newTipsSeedCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Embed the tip catalog and store it in PostgreSQL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to seed tips")
			}
			if !cfg.EmbeddingsEnabled() {
				return fmt.Errorf("GOOGLE_API_KEY is required to embed tips")
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.store.Migrate(cmd.Context()); err != nil {
				return err
			}
			added, err := a.tips.Seed(cmd.Context())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d tips\n", added)
			return nil
		},
	}
}
