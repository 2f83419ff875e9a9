package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GyroZepelix/library-cms/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return errors.New("LIBRARY_DATABASE_URL is required")
		}
		version, err := database.RunMigrations(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		slog.Info("migrations applied", "version", version)
		return nil
	},
}
