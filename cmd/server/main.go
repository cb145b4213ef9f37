// Package main is the entrypoint for the pangram-webui API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrexodia/pangram-webui/internal/analysis"
	"github.com/mrexodia/pangram-webui/internal/api"
	"github.com/mrexodia/pangram-webui/internal/api/handler"
	"github.com/mrexodia/pangram-webui/internal/api/response"
	"github.com/mrexodia/pangram-webui/internal/config"
	"github.com/mrexodia/pangram-webui/internal/pangram"
	"github.com/mrexodia/pangram-webui/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on a missing credential
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "db_path", cfg.Database.Path, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Open the history database
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened")

	// 3. Run migrations
	if err := store.RunMigrations(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create the detection client and history store
	detector := pangram.NewHTTPClient(cfg.Pangram.BaseURL, cfg.Pangram.APIKey, cfg.Pangram.Timeout)
	historyStore := store.NewSQLiteStore(db)

	// 5. Wire the analysis service and handlers
	svc := analysis.NewService(detector, historyStore)

	deps := api.Dependencies{
		HealthHandler:  healthHandler(historyStore),
		AnalyzeHandler: handler.NewAnalyzeHandler(svc),
		ListHistory:    handler.NewListHistoryHandler(historyStore),
		GetAnalysis:    handler.NewGetAnalysisHandler(historyStore),
		StatsHandler:   handler.NewStatsHandler(historyStore),
	}

	router := api.NewRouter(deps)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks that the history database is reachable.
func healthHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Ping(r.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"History database unavailable", nil)
			return
		}
		response.JSON(w, map[string]any{"status": "ok"})
	}
}
