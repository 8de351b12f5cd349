package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port                  int    `yaml:"port"`
	LogLevel              string `yaml:"log_level"`
	HyperliquidURL        string `yaml:"hyperliquid_url"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
	PaceMillis            int    `yaml:"pace_ms"`
	LeaderboardCap        int    `yaml:"leaderboard_cap"`
	TopN                  int    `yaml:"top_n"`
	MaxWorkers            int    `yaml:"max_workers"`
	CommandTimeoutSeconds int    `yaml:"command_timeout_seconds"`
}

func defaults() Config {
	return Config{
		Port:                  8087,
		LogLevel:              "info",
		HyperliquidURL:        "https://api.hyperliquid.xyz/info",
		RequestTimeoutSeconds: 15,
		PaceMillis:            500,
		LeaderboardCap:        50,
		TopN:                  20,
		MaxWorkers:            10,
		CommandTimeoutSeconds: 120,
	}
}

func Load(path string) (Config, error) {
	cfg := defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	// Validation & normalization
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, errors.New("invalid port")
	}
	if cfg.HyperliquidURL == "" {
		return cfg, errors.New("hyperliquid_url must not be empty")
	}
	if cfg.RequestTimeoutSeconds < 1 {
		return cfg, errors.New("request_timeout_seconds must be >=1")
	}
	if cfg.PaceMillis < 0 {
		return cfg, errors.New("pace_ms must be >=0")
	}
	if cfg.LeaderboardCap < 1 {
		return cfg, errors.New("leaderboard_cap must be >=1")
	}
	if cfg.TopN < 1 {
		return cfg, errors.New("top_n must be >=1")
	}
	if cfg.MaxWorkers < 1 {
		return cfg, errors.New("max_workers must be >=1")
	}
	// A command walks the whole leaderboard with a fixed pause between
	// requests; the deadline has to leave room for that.
	minBudget := cfg.LeaderboardCap * cfg.PaceMillis / 1000
	if cfg.CommandTimeoutSeconds <= minBudget {
		return cfg, fmt.Errorf("command_timeout_seconds must exceed leaderboard_cap*pace_ms (%ds)", minBudget)
	}
	return cfg, nil
}

func NewLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	h := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	return slog.New(h)
}
