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

	"github.com/starford/othala/internal/api"
	"github.com/starford/othala/internal/mcpserver"
	"github.com/starford/othala/internal/pageservice"
	"github.com/starford/othala/internal/pagestore"
	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/resolver"
	"github.com/starford/othala/internal/schemastore"
	"github.com/starford/othala/internal/sse"
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
		slog.String("schemas_path", cfg.Schemas.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("pages_path", cfg.Pages.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directories exist.
	if err := os.MkdirAll(cfg.Schemas.Path, 0o755); err != nil {
		return fmt.Errorf("create schemas dir: %w", err)
	}
	if err := os.MkdirAll(cfg.Pages.Path, 0o755); err != nil {
		return fmt.Errorf("create pages dir: %w", err)
	}

	// Initialize schema and page stores.
	schemas, err := schemastore.NewFS(cfg.Schemas.Path)
	if err != nil {
		return fmt.Errorf("init schema store: %w", err)
	}
	pages, err := pagestore.NewFS(cfg.Pages.Path)
	if err != nil {
		return fmt.Errorf("init page store: %w", err)
	}

	// Initialize the SQLite property registry.
	db, err := registry.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init registry: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := registry.Sync(db, schemas, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// Resolution pipeline.
	inh := resolver.NewInheritance(schemas, db)
	multi := resolver.NewMulti(inh)
	pageSvc := pageservice.New(multi, pages)

	if app.mcp {
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(schemas, pages, db, inh, multi, pageSvc).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	// Build API router.
	apiRouter := api.NewRouter(inh, multi, pageSvc, db, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Start schema directory watcher with SSE callback.
	g.Go(func() error {
		return registry.Watch(gCtx, db, schemas, cfg.Schemas.Path, logger, func(kind, category string) {
			broker.PublishSchemaEvent(kind, category)
		})
	})

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

		broker.Close()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
