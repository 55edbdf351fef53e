package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/zoobzio/timerz"
)

// Config is the demo configuration, read from a TOML file.
type Config struct {
	Title      string   `toml:"title"`
	Items      []string `toml:"items"`
	DebounceMS int      `toml:"debounce_ms"`
	LogFile    string   `toml:"log_file"`
	LogLevel   string   `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Title: "Contacts",
		Items: []string{
			"Alice", "Alex", "Amir", "Bob", "Bea", "Carla",
			"Charlie", "Dmitri", "Eve", "Frank", "Grace", "Heidi",
		},
		DebounceMS: 700,
		LogFile:    "typeahead-demo.log",
		LogLevel:   "debug",
	}
}

// LoadConfig reads path over the defaults. Keys missing from the file keep
// their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Items) == 0 {
		return nil, fmt.Errorf("config %s: items must not be empty", path)
	}
	return cfg, nil
}

// Debounce returns the configured debounce time.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Level maps LogLevel to a slog level. "verbose" enables trace output.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "verbose", "trace":
		return timerz.LevelVerbose
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
