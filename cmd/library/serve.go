package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/GyroZepelix/library-cms/internal/activity"
	"github.com/GyroZepelix/library-cms/internal/auth"
	"github.com/GyroZepelix/library-cms/internal/content"
	"github.com/GyroZepelix/library-cms/internal/likes"
	"github.com/GyroZepelix/library-cms/internal/ratelimit"
	"github.com/GyroZepelix/library-cms/internal/server"
	"github.com/GyroZepelix/library-cms/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	slog.Info("starting library server",
		"port", cfg.Port,
		"dev_mode", cfg.DevMode,
		"counter_rps", cfg.CounterRPS,
		"counter_burst", cfg.CounterBurst,
	)

	if cfg.JWTSecret == "" {
		return errors.New("LIBRARY_JWT_SECRET is required")
	}

	db, err := connect(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()

	// --- Activity log ---
	activityService := activity.NewService(activity.NewRepository(db))
	activityService.Start()

	// --- Services ---
	validator := validation.New()

	authService := auth.NewService(auth.NewRepository(db), cfg.JWTSecret, cfg.AccessTokenTTL)
	likeService := likes.NewService(likes.NewRepository(db), activityService)
	contentService := content.NewService(content.NewRepository(db), likeService, activityService)

	counterLimiter := ratelimit.New(cfg.CounterRPS, cfg.CounterBurst, 10*time.Minute)
	defer counterLimiter.Stop()

	// --- Build router and start server ---
	router := server.NewRouter(server.Dependencies{
		DB:                     db,
		DevMode:                cfg.DevMode,
		CORSOrigins:            cfg.CORSOrigins,
		Auth:                   auth.NewHandler(authService, validator),
		Content:                content.NewHandler(contentService),
		Likes:                  likes.NewHandler(likeService),
		Activity:               activity.NewHandler(activityService),
		AuthMiddleware:         auth.Middleware(cfg.JWTSecret),
		OptionalAuthMiddleware: auth.OptionalMiddleware(cfg.JWTSecret),
		CounterLimiter:         ratelimit.Middleware(counterLimiter),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.New(addr, router)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		errCh <- srv.Start()
	}()

	// --- Graceful shutdown on SIGINT/SIGTERM ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("shutting down server (30s timeout)...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	activityService.Shutdown(shutdownCtx)

	slog.Info("library server stopped", "dropped_activity_events", activityService.DroppedCount())
	return nil
}
