// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/jobtrail/internal/api"
	"github.com/starford/jobtrail/internal/blobstore"
	"github.com/starford/jobtrail/internal/lease"
	"github.com/starford/jobtrail/internal/mcpserver"
	"github.com/starford/jobtrail/internal/metrics"
	"github.com/starford/jobtrail/internal/normalize"
	"github.com/starford/jobtrail/internal/sse"
	"github.com/starford/jobtrail/internal/storage"
	"github.com/starford/jobtrail/internal/tracker"
)

// components are shared by the HTTP and MCP entry points.
type components struct {
	ctrl     *tracker.Controller
	scalar   *storage.Scalar
	registry *prometheus.Registry
	closers  []io.Closer
}

func (rt *components) Close() {
	rt.ctrl.Close()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		_ = rt.closers[i].Close()
	}
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// build opens the data directory and the attachment store and assembles
// the controller. A store that fails to open is logged and left out;
// everything but attachments keeps working.
func build(cfg *Config, logger *slog.Logger) (*components, error) {
	if err := os.MkdirAll(cfg.Data.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	fs, err := storage.NewFS(cfg.Data.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	rt := &components{}
	norm := normalize.New()
	rt.scalar = storage.NewScalar(fs, norm, logger)

	var sink metrics.Sink = metrics.NewNoopSink()
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sink = metrics.NewPrometheusSink(rt.registry, logger)
	}

	opts := []tracker.Option{
		tracker.WithNormalizer(norm),
		tracker.WithLogger(logger),
		tracker.WithMetrics(sink),
		tracker.WithLeases(lease.New()),
		tracker.WithLeaseTTL(cfg.Attachments.OpenTTL, cfg.Attachments.DownloadTTL),
	}

	if cfg.SQLite.Enabled() {
		db, err := blobstore.Open(cfg.SQLite.Path)
		if err != nil {
			logger.Warn("attachment storage unavailable",
				slog.String("sqlite_path", cfg.SQLite.Path),
				slog.String("error", err.Error()))
		} else {
			rt.closers = append(rt.closers, db)
			opts = append(opts, tracker.WithBlobStore(db))
		}
	} else {
		logger.Info("attachment storage disabled")
	}

	rt.ctrl = tracker.New(rt.scalar, opts...)
	return rt, nil
}

// sseChange maps a committed controller change onto broker events.
func sseChange(ch tracker.Change) sse.Change {
	return sse.Change{
		Command:     ch.Command,
		Jobs:        ch.Sections.Has(tracker.SectionJobs),
		Checklist:   ch.Sections.Has(tracker.SectionChecklist),
		Profile:     ch.Sections.Has(tracker.SectionProfile),
		Attachments: ch.Sections.Has(tracker.SectionAttachments),
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	logger := newLogger(cfg, app.logWriter(os.Stdout))

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_path", cfg.Data.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("metrics", cfg.Metrics.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	rt, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()
	ctrl := rt.ctrl

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	ctrl.OnChange(func(ch tracker.Change) {
		broker.PublishChange(sseChange(ch))
	})

	apiRouter := api.NewRouter(ctrl, api.RouterConfig{
		AuthEnabled:    cfg.Auth.AuthEnabled(),
		Token:          cfg.Auth.Token,
		Events:         broker,
		MaxUploadBytes: cfg.Attachments.MaxUploadBytes,
	})

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
		status := "ok"
		if !ctrl.AttachmentsAvailable() {
			status = "degraded"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(api.HealthResponse{
			Status:      status,
			Attachments: ctrl.AttachmentsAvailable(),
		})
	})

	if rt.registry != nil {
		r.Handle("/metrics", metrics.Handler(rt.registry))
	}

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload state edited by other processes.
	if cfg.Data.Watch {
		g.Go(func() error {
			err := storage.Watch(gCtx, rt.scalar, logger, func(key string) {
				logger.Info("external change detected", slog.String("key", key))
				ctrl.Reload(key)
			})
			if err != nil {
				logger.Warn("data watcher stopped", slog.String("error", err.Error()))
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

// RunMCP serves the MCP tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config
	cfg.Metrics.Enabled = false
	logger := newLogger(cfg, app.logWriter(os.Stderr))

	rt, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if cfg.Data.Watch {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := storage.Watch(watchCtx, rt.scalar, logger, rt.ctrl.Reload); err != nil {
				logger.Warn("data watcher stopped", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("MCP server starting", slog.String("data_path", cfg.Data.Path))
	return mcpserver.New(rt.ctrl).ServeStdio()
}
