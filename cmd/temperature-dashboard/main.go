package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/temperature-dashboard/internal/api/http"
	"github.com/i474232898/temperature-dashboard/internal/config"
	"github.com/i474232898/temperature-dashboard/internal/dashboard"
	"github.com/i474232898/temperature-dashboard/internal/observability"
	"github.com/i474232898/temperature-dashboard/internal/render"
	"github.com/i474232898/temperature-dashboard/internal/scheduler"
	"github.com/i474232898/temperature-dashboard/internal/store"
	"github.com/i474232898/temperature-dashboard/internal/temperature/sources"
)

const appName = "temperature-dashboard"

var version = "dev"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg, version, appName)
	slog.SetDefault(logger)

	metrics := observability.NewMetrics()

	// Shared HTTP client for remote dataset downloads.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	source, err := sources.New(cfg.DataSource, httpClient)
	if err != nil {
		logger.Error("invalid data source", "source", cfg.DataSource, "error", err)
		return
	}

	ctrl := dashboard.New(dashboard.Config{
		Language:    cfg.DefaultLanguage,
		LoadTimeout: cfg.LoadTimeout,
	}, source, store.NewMemoryStore(), logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The dashboard starts in the loading state and serves requests while
	// the first dataset is fetched.
	ctrl.Reload(ctx)

	sched := scheduler.New(cfg.RefreshInterval, ctrl, logger)
	if err := sched.Start(); err != nil {
		logger.Error("failed to start scheduler", "error", err)
		return
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		snap := ctrl.Snapshot()
		return c.JSON(fiber.Map{
			"status":     "ok",
			"service":    appName,
			"dataset":    snap.Status,
			"generation": snap.Generation,
		})
	})

	httpapi.RegisterMetrics(app)
	httpapi.RegisterRoutes(app, httpapi.Deps{
		Controller: ctrl,
		Renderer:   render.New(cfg.ChartWidth, cfg.ChartHeight),
		Metrics:    metrics,
		Year:       cfg.DataYear,
	})

	go func() {
		logger.Info("http server listening", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("fiber server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", "error", err)
	}
	if err := ctrl.Shutdown(shutdownCtx); err != nil {
		logger.Error("dataset loads still running at exit", "error", err)
	}
}
