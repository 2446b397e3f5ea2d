// Package app wires configuration, logging, the table provider, the
// dashboard service and the HTTP router into a runnable server.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"mediadash/internal/config"
	"mediadash/internal/infrastructure"
	customMiddleware "mediadash/internal/middleware"
	"mediadash/internal/services"
	"mediadash/internal/sheets"
	handlers "mediadash/internal/transport/http"
)

// Version is the reported application version, overridable at build time.
var Version = "dev"

// Application represents the main application container.
type Application struct {
	Config    *config.Config
	Router    *chi.Mux
	Server    *http.Server
	Dashboard *services.DashboardService
	Logger    *slog.Logger
}

// NewApplication creates a new application instance with dependency
// injection.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.Int("port", cfg.Server.Port))

	provider, err := newProvider(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &Application{
		Config:    cfg,
		Dashboard: services.NewDashboardService(provider, cfg.Report, logger),
		Logger:    logger,
	}
	app.setupRouter()
	app.createServer()
	return app, nil
}

// newProvider selects the table provider: the Sheets API when a spreadsheet
// is configured, otherwise the local workbook.
func newProvider(cfg *config.Config, logger *slog.Logger) (services.TableProvider, error) {
	if cfg.Sheets.SpreadsheetID != "" {
		client, err := sheets.NewClient(context.Background(), cfg.Sheets, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		return client, nil
	}
	wb, err := sheets.NewWorkbook(cfg.Sheets, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create workbook provider: %w", err)
	}
	return wb, nil
}

func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger)
		r.Use(limiter.Handler)
	}

	r.Mount("/api/health", handlers.NewHealthHandler(a.Dashboard, Version).Routes())
	r.Mount("/api/dashboard", handlers.NewDashboardHandler(a.Dashboard, a.Logger).Routes())

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start runs the HTTP server until the context is canceled, then shuts it
// down gracefully. The initial snapshot is loaded before serving so the
// first request never races the first refresh.
func (a *Application) Start(ctx context.Context) error {
	refreshCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if _, err := a.Dashboard.Refresh(refreshCtx); err != nil {
		// Serve anyway; readiness stays false until a refresh succeeds.
		a.Logger.Error("initial refresh failed", slog.String("error", err.Error()))
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("http server listening", slog.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("shutting down")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return infrastructure.CloseLogFile()
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Start(ctx)
}
