package admin

import (
	"fmt"

	"github.com/cloo-solutions/docqa/internal/config"
	"github.com/cloo-solutions/docqa/internal/database"
	"github.com/cloo-solutions/docqa/internal/logging"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long:  "Apply pending migrations to DOCQA_DATABASE_URL, or roll back the last N with --down.",
		RunE:  runMigrate,
	}

	cmd.Flags().Int("down", 0, "Roll back this many migrations instead of applying")
	cmd.Flags().String("migrations-dir", database.DefaultMigrationsDir, "Directory holding the SQL migrations")

	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DOCQA_DATABASE_URL is required")
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	dir, _ := cmd.Flags().GetString("migrations-dir")
	if down, _ := cmd.Flags().GetInt("down"); down > 0 {
		return database.Rollback(cfg.DatabaseURL, dir, down, logger)
	}
	return database.Migrate(cfg.DatabaseURL, dir, logger)
}
