package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/temperature-dashboard/internal/i18n"
)

type AppConfig struct {
	AppEnv   string
	LogLevel slog.Level
	Port     string

	// DataSource is either an http(s) URL or a local path to the CSV file.
	DataSource string
	// DataYear is the calendar year the dataset covers; used in chart titles.
	DataYear int

	HTTPTimeout time.Duration
	LoadTimeout time.Duration

	// RefreshInterval controls how often the dataset is reloaded (0 = never).
	RefreshInterval time.Duration

	DefaultLanguage i18n.Language

	ChartWidth  int
	ChartHeight int

	ShutdownTimeout time.Duration
}

// Load reads configuration from environment with sensible defaults. A .env
// file in the working directory is honoured when present.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.AppEnv = getenvDefault("APP_ENV", "dev")
	switch cfg.AppEnv {
	case "dev", "prod":
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", cfg.AppEnv)
	}

	level, err := parseLogLevel(getenvDefault("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.DataSource = getenvDefault("DATA_SOURCE", "data/temperature_data_2024.csv")

	if cfg.DataYear, err = getenvInt("DATA_YEAR", 2024); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.LoadTimeout, err = getenvDuration("LOAD_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "0s"); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getenvDuration("SHUTDOWN_TIMEOUT", "10s"); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 || cfg.LoadTimeout <= 0 || cfg.ShutdownTimeout <= 0 {
		return nil, fmt.Errorf("HTTP_TIMEOUT, LOAD_TIMEOUT and SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.RefreshInterval < 0 {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: must not be negative")
	}

	lang, err := i18n.ParseLanguage(getenvDefault("DEFAULT_LANGUAGE", string(i18n.DefaultLanguage)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_LANGUAGE: %w", err)
	}
	cfg.DefaultLanguage = lang

	if cfg.ChartWidth, err = getenvInt("CHART_WIDTH", 1000); err != nil {
		return nil, err
	}
	if cfg.ChartHeight, err = getenvInt("CHART_HEIGHT", 500); err != nil {
		return nil, err
	}
	if cfg.ChartWidth <= 0 || cfg.ChartHeight <= 0 {
		return nil, fmt.Errorf("CHART_WIDTH and CHART_HEIGHT must be positive")
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
