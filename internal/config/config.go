package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port            string
	Environment     string
	LogLevel        slog.Level
	RedisURL        string
	DataDir         string        // scenarios live under DataDir/scenarios
	TriggerCapacity int           // 0 keeps the engine default
	GameTTL         time.Duration // expiry of saved games in Redis
	PollInterval    time.Duration // worker sleep between empty polls
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),
		DataDir:     getEnv("DATA_DIR", "./data"),
	}

	var err error
	if cfg.TriggerCapacity, err = strconv.Atoi(getEnv("TRIGGER_CAPACITY", "0")); err != nil || cfg.TriggerCapacity < 0 {
		return nil, fmt.Errorf("invalid TRIGGER_CAPACITY %q", os.Getenv("TRIGGER_CAPACITY"))
	}
	if cfg.GameTTL, err = time.ParseDuration(getEnv("GAME_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid GAME_TTL: %w", err)
	}
	if cfg.PollInterval, err = time.ParseDuration(getEnv("POLL_INTERVAL", "500ms")); err != nil {
		return nil, fmt.Errorf("invalid POLL_INTERVAL: %w", err)
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", cfg.PollInterval)
	}
	return cfg, nil
}

// ScenarioDir is where scenario fixture and trigger files are read from.
func (c *Config) ScenarioDir() string {
	return filepath.Join(c.DataDir, "scenarios")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
