package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	GeneratorURL      string        `env:"GENERATOR_URL" envDefault:"http://localhost:8000"`
	IndicatorInterval time.Duration `env:"INDICATOR_INTERVAL" envDefault:"9.5s"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	StubPort          int           `env:"STUB_PORT" envDefault:"8000"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if cfg.IndicatorInterval < 0 {
		return nil, fmt.Errorf("invalid INDICATOR_INTERVAL %v: must not be negative", cfg.IndicatorInterval)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %v: must not be negative", cfg.RequestTimeout)
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL '%s': expected debug, info, warn or error", level)
	}
}

// SetupLogger installs a text slog handler on stderr at the configured level.
func (cfg *Config) SetupLogger() {
	level, err := ParseLogLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
