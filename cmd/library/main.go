// Package main is the entrypoint for the library content server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GyroZepelix/library-cms/internal/config"
	"github.com/GyroZepelix/library-cms/internal/database"
)

var cfg *config.Config

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Library content API server",
	Long: `Serves the library content API: filtered listings, search with tag
fallback, per-user likes and view/like counters.

Configuration is read from LIBRARY_* environment variables.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		setupLogging(cfg.DevMode)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogging installs a JSON slog handler, at debug level in dev mode.
func setupLogging(devMode bool) {
	logLevel := slog.LevelInfo
	if devMode {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}

// connect opens the database pool and applies pending migrations.
func connect(ctx context.Context) (*database.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("LIBRARY_DATABASE_URL is required")
	}

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	db, err := database.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	slog.Info("database connected")

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("migrations applied", "version", version)

	return db, nil
}
