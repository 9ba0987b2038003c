package observability

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"

	"github.com/i474232898/temperature-dashboard/internal/config"
)

// NewLogger returns a colorized console logger for dev builds and a JSON
// logger otherwise.
func NewLogger(cfg *config.AppConfig, version, appName string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(os.Stdout, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
