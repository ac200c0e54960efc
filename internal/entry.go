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

	"github.com/mauropereiira/Moldavite-sub001/internal/api"
	"github.com/mauropereiira/Moldavite-sub001/internal/apperr"
	"github.com/mauropereiira/Moldavite-sub001/internal/index"
	"github.com/mauropereiira/Moldavite-sub001/internal/lifecycle"
	"github.com/mauropereiira/Moldavite-sub001/internal/mcpserver"
	"github.com/mauropereiira/Moldavite-sub001/internal/noteservice"
	"github.com/mauropereiira/Moldavite-sub001/internal/sse"
	"github.com/mauropereiira/Moldavite-sub001/internal/storage"
	"github.com/mauropereiira/Moldavite-sub001/internal/vault"
)

const trashSweepEvery = time.Hour

// backend is what both the HTTP server and the MCP server run on.
type backend struct {
	store storage.Provider
	db    *index.DB
	notes *noteservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (app *application) logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
}

// openBackend opens the vault and its index and brings the index up to date.
// The caller closes db.
func openBackend(cfg *Config, logger *slog.Logger) (*backend, error) {
	if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return &backend{store: store, db: db, notes: noteservice.NewService(store, db, nil)}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := app.logger()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer be.db.Close()

	v, err := vault.New(be.store,
		vault.WithTrashRetention(cfg.Vault.TrashDays),
		vault.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("init vault: %w", err)
	}
	sweepTrash(ctx, v, logger)

	session := lifecycle.New(v, append(cfg.Editor.LifecycleOptions(), lifecycle.WithLogger(logger))...)
	if err := session.RefreshListing(ctx); err != nil {
		logger.Warn("initial listing failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker()
	defer broker.Close()

	apiRouter := api.NewRouter(api.Deps{
		Session: session,
		Vault:   v,
		Notes:   be.notes,
		Store:   be.store,
	}, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Images in notes load without credentials.
	r.Get("/attachments/{filename}", api.NewAttachmentHandler(be.store).ServeFile)

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// File watcher: keeps the index and the session listing current.
	g.Go(func() error {
		err := index.Watch(gCtx, be.db, be.store, logger, func(kind, p string) {
			broker.PublishNoteEvent(kind, p)
			if err := session.RefreshListing(gCtx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, apperr.ErrClosed) {
				logger.Warn("listing refresh failed", slog.String("path", p), slog.String("error", err.Error()))
			}
		})
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Session events to SSE clients.
	g.Go(func() error {
		broker.Forward(gCtx, session.Events())
		return nil
	})

	// Trash retention.
	g.Go(func() error {
		ticker := time.NewTicker(trashSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case <-ticker.C:
				sweepTrash(gCtx, v, logger)
			}
		}
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
		defer signal.Stop(quit)

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

		// Pending edits reach disk before the session goes away.
		if err := session.FlushCurrentNote(shutdownCtx); err != nil {
			logger.Error("final save failed", slog.String("error", err.Error()))
		}
		session.Close()

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group's context so the background loops stop
// once the server is down.
var errShutdown = errors.New("shutdown")

func sweepTrash(ctx context.Context, v *vault.Vault, logger *slog.Logger) {
	n, err := v.CleanupTrash(ctx)
	if err != nil {
		logger.Warn("trash cleanup failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		logger.Info("trash cleaned", slog.Int("purged", n))
	}
}

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr, since
// stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()
	slog.SetDefault(logger)

	be, err := openBackend(app.config, logger)
	if err != nil {
		return err
	}
	defer be.db.Close()

	logger.Info("MCP server starting", slog.String("vault_path", app.config.Vault.Path))
	return mcpserver.New(be.notes, be.store).ServeStdio()
}
