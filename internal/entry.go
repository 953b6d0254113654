// Package internal provides the main application initialization and runtime logic.
package internal

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/retracehq/retrace/internal/api"
	"github.com/retracehq/retrace/internal/claims"
	"github.com/retracehq/retrace/internal/match"
	"github.com/retracehq/retrace/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Float64("match_threshold", cfg.Matching.Threshold),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Open the database.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Build the alias index; the config file wins over the built-in groups.
	groups := match.DefaultAliasGroups
	if cfg.Matching.AliasesPath != "" {
		loaded, err := match.LoadAliasGroups(cfg.Matching.AliasesPath)
		if err != nil {
			logger.Warn("alias file load failed, using built-in groups",
				slog.String("path", cfg.Matching.AliasesPath),
				slog.String("error", err.Error()))
		} else {
			groups = loaded
		}
	}
	aliases := match.NewAliasProvider(match.NewAliasIndex(groups))

	// Wire the engine and services.
	scorer := match.NewScorer(cfg.Matching.Weights, aliases)
	engine := match.NewEngine(db, db, db, scorer, cfg.Matching.Threshold, logger)
	claimSvc := claims.NewService(db, db, db, db, logger)

	handler := api.NewHandler(db, db, db, engine, claimSvc)
	apiRouter := api.NewRouter(handler, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Hot-reload the alias file when configured.
	if cfg.Matching.AliasesPath != "" {
		aliasPath := cfg.Matching.AliasesPath
		g.Go(func() error {
			if err := match.WatchAliases(gCtx, aliasPath, aliases, logger); err != nil {
				logger.Warn("alias watcher exited", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
