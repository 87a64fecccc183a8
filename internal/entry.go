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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/gantt/internal/api"
	"github.com/starford/gantt/internal/catalog"
	"github.com/starford/gantt/internal/generator"
	"github.com/starford/gantt/internal/mcpserver"
	"github.com/starford/gantt/internal/models"
	"github.com/starford/gantt/internal/sse"
	"github.com/starford/gantt/internal/storage"
)

// runtime is everything a command needs once configuration is loaded.
type runtime struct {
	cfg      *Config
	logger   *slog.Logger
	store    *storage.FS
	catalog  *catalog.DB
	profiles []*generator.Profile
}

func (rt *runtime) Close() {
	if rt.catalog != nil {
		rt.catalog.Close()
	}
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

// bootstrap sets up logging, loads every profile, opens storage and, when
// withCatalog is set, the SQLite catalog. Profile failures are returned
// before anything touches the workspace.
func (app *application) bootstrap(withCatalog bool) (*runtime, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("workspace_path", cfg.Workspace.Path),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("format", cfg.Render.Format),
		slog.Int("profiles", len(cfg.Profiles)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	profiles, err := generator.LoadProfiles(cfg.Workspace.Path, cfg.ProfileSpecs())
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.Workspace.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	store, err := storage.NewFS(cfg.Workspace.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	rt := &runtime{cfg: cfg, logger: logger, store: store, profiles: profiles}
	if !withCatalog {
		return rt, nil
	}

	if dir := filepath.Dir(cfg.Catalog.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
	}
	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	rt.catalog = db
	return rt, nil
}

func (rt *runtime) generator(options ...generator.Option) (*generator.Generator, error) {
	options = append([]generator.Option{
		generator.WithLogger(rt.logger),
		generator.WithWorkers(rt.cfg.Render.Workers),
	}, options...)
	return generator.New(rt.store, rt.catalog, rt.profiles, rt.cfg.Render.Options(), options...)
}

// Validate loads and normalizes every configured profile without rendering.
func Validate(ctx context.Context, opts ...Option) ([]*generator.Profile, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	rt, err := app.bootstrap(false)
	if err != nil {
		return nil, err
	}
	defer rt.Close()
	for _, p := range rt.profiles {
		rt.logger.Info("profile valid",
			slog.String("profile", p.Name),
			slog.String("config", p.ConfigPath),
			slog.String("csv", p.Config.CSVDirectory),
			slog.String("target", p.Config.TargetDirectory))
	}
	return rt.profiles, nil
}

// Render runs one batch over the workspace.
func Render(ctx context.Context, batch generator.BatchOptions, opts ...Option) (generator.Summary, error) {
	app, err := newApplication(opts)
	if err != nil {
		return generator.Summary{}, err
	}
	rt, err := app.bootstrap(true)
	if err != nil {
		return generator.Summary{}, err
	}
	defer rt.Close()

	gen, err := rt.generator()
	if err != nil {
		return generator.Summary{}, err
	}
	return gen.Batch(ctx, batch)
}

// ServeMCP serves the MCP tools on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	rt, err := app.bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.Close()

	gen, err := rt.generator()
	if err != nil {
		return err
	}
	rt.logger.Info("MCP server starting on stdio")
	return mcpserver.New(rt.store, rt.catalog, gen).ServeStdio()
}

// Run renders the workspace once and then serves the HTTP API, the SSE
// stream and the file watcher until a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	rt, err := app.bootstrap(true)
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg, logger := rt.cfg, rt.logger

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	gen, err := rt.generator(generator.WithResultCallback(func(rec models.ChartRecord) {
		broker.PublishChart(rec.Status, sse.ChartEvent{
			Source:  rec.Source,
			Output:  rec.Output,
			Profile: rec.Profile,
			Rows:    rec.Rows,
			Error:   rec.Error,
		})
	}))
	if err != nil {
		return err
	}

	// Initial render.
	if _, err := gen.Batch(ctx, generator.BatchOptions{}); err != nil {
		logger.Warn("initial render failed", slog.String("error", err.Error()))
	}

	// Build API service and router.
	svc := api.NewService(rt.store, rt.catalog, gen)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		if _, _, err := rt.catalog.ListCharts("", "", 1, 0); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"catalog unavailable"}`))
			return
		}
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

	// Start file watcher; render outcomes reach SSE through the result callback.
	g.Go(func() error {
		return gen.Watch(gCtx, func(kind, path string) {
			if kind == generator.EventDeleted {
				broker.PublishChart(sse.ChartDeleted, sse.ChartEvent{Source: path})
			}
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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown stops the watcher once the HTTP server has shut down.
var errShutdown = errors.New("shutdown")
