// Command typeahead-demo is a terminal list with type-to-jump selection.
//
// Usage:
//
//	typeahead-demo [-config typeahead.toml]
//
// Example configuration:
//
//	title = "Fruit"
//	items = ["Apple", "Apricot", "Banana", "Blueberry", "Cherry"]
//	debounce_ms = 600
//	log_file = "typeahead-demo.log"
//	log_level = "verbose"
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zoobzio/timerz"
	"github.com/zoobzio/timerz/typeahead"
)

const metricsInterval = 10 * time.Second

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.StringVar(&configPath, "c", "", "Path to a TOML configuration file (shorthand)")
	flag.Parse()

	cfg, err := LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Log to a file, the terminal belongs to the UI
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	logger := timerz.NewSlogLogger(slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{
		Level: cfg.Level(),
	})))

	timers := timerz.New(timerz.WithLogger(logger))
	defer timers.Close()

	reg := typeahead.NewRegistry[string](
		typeahead.WithDebouncer(timers.Debounce),
		typeahead.WithLogger(logger),
		typeahead.WithDefaultDebounce(cfg.Debounce()),
	)
	defer reg.Close()

	err = timers.Interval.Set("demo.metrics", metricsInterval, func() error {
		m := reg.Metrics()
		logger.Debug("demo", "metrics", "typeahead metrics",
			"keystrokes", m.KeystrokesHandled,
			"ignored", m.KeystrokesIgnored,
			"matches", m.Matches,
			"resets", m.Resets)
		return nil
	}, timerz.WithAutorun())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scheduling metrics: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(cfg, reg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
}
