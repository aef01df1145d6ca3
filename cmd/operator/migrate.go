package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"google.golang.org/adk/session/database"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/easeaico/neuromirror/internal/storage"
)

func newMigrateCmd() *cobra.Command {
	var adkOnly, appOnly, dryRun bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations (ADK session tables and app tables)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if adkOnly && appOnly {
				return fmt.Errorf("cannot use both --adk-only and --app-only")
			}
			out := cmd.OutOrStdout()

			if dryRun {
				_, _ = fmt.Fprintln(out, "Dry run mode - no changes will be made")
				if !appOnly {
					_, _ = fmt.Fprintln(out, "  - Would migrate ADK session tables")
				}
				if !adkOnly {
					_, _ = fmt.Fprintln(out, "  - Would migrate application tables (baseline_profiles, tips)")
				}
				return nil
			}

			url, err := databaseURL()
			if err != nil {
				return err
			}

			if !appOnly {
				_, _ = fmt.Fprintln(out, "Migrating ADK session tables...")
				if err := migrateADKSession(url); err != nil {
					return fmt.Errorf("failed to migrate ADK session: %w", err)
				}
				_, _ = fmt.Fprintln(out, "  ✓ ADK session tables migrated")
			}

			if !adkOnly {
				_, _ = fmt.Fprintln(out, "Migrating application tables...")
				if err := migrateAppTables(cmd.Context(), url); err != nil {
					return fmt.Errorf("failed to migrate app tables: %w", err)
				}
				_, _ = fmt.Fprintln(out, "  ✓ Application tables migrated")
			}

			_, _ = fmt.Fprintln(out, "\nMigration completed successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVar(&adkOnly, "adk-only", false, "only migrate ADK session tables")
	cmd.Flags().BoolVar(&appOnly, "app-only", false, "only migrate application tables")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be migrated without executing")
	return cmd
}

func newSchemaCmd() *cobra.Command {
	var file, dir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Execute SQL migration files from the migrations directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()

			files, err := findMigrationFiles(dir, file)
			if err != nil {
				return fmt.Errorf("failed to find migration files: %w", err)
			}
			if len(files) == 0 {
				_, _ = fmt.Fprintln(out, "No migration files found")
				return nil
			}

			_, _ = fmt.Fprintf(out, "Found %d migration file(s):\n", len(files))
			for _, f := range files {
				_, _ = fmt.Fprintf(out, "  - %s\n", filepath.Base(f))
			}
			if dryRun {
				_, _ = fmt.Fprintln(out, "\nDry run mode - no SQL will be executed")
				return nil
			}

			url, err := databaseURL()
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(url)
			if err != nil {
				return err
			}
			defer closeDB()

			_, _ = fmt.Fprintln(out, "\nExecuting migrations...")
			for _, f := range files {
				_, _ = fmt.Fprintf(out, "  Running %s... ", filepath.Base(f))
				if err := executeSQLFile(cmd.Context(), db, f); err != nil {
					_, _ = fmt.Fprintln(out, "✗")
					return fmt.Errorf("failed to execute %s: %w", f, err)
				}
				_, _ = fmt.Fprintln(out, "✓")
			}

			_, _ = fmt.Fprintln(out, "\nSchema migration completed successfully!")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "specific migration file to execute")
	cmd.Flags().StringVar(&dir, "dir", "migrations", "directory containing migration files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be executed without running")
	return cmd
}

func migrateADKSession(url string) error {
	sessionService, err := database.NewSessionService(postgres.Open(url))
	if err != nil {
		return fmt.Errorf("failed to create session service: %w", err)
	}
	if err := database.AutoMigrate(sessionService); err != nil {
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	return nil
}

func migrateAppTables(ctx context.Context, url string) error {
	db, closeDB, err := openDB(url)
	if err != nil {
		return err
	}
	defer closeDB()
	return storage.Migrate(ctx, db)
}

func openDB(url string) (*gorm.DB, func(), error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql DB handle: %w", err)
	}
	return db, func() { _ = sqlDB.Close() }, nil
}

// findMigrationFiles returns the .sql files in dir sorted by name, or just
// dir/specificFile when one is named.
func findMigrationFiles(dir, specificFile string) ([]string, error) {
	if specificFile != "" {
		fullPath := filepath.Join(dir, specificFile)
		if _, err := os.Stat(fullPath); err != nil {
			return nil, fmt.Errorf("migration file not found: %s", fullPath)
		}
		return []string{fullPath}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func executeSQLFile(ctx context.Context, db *gorm.DB, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if err := db.WithContext(ctx).Exec(string(content)).Error; err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}
