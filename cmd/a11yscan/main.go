// # cmd/a11yscan/main.go
package main

import (
	"a11yscan/internal/config"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

var (
	configPath = flag.String("config", "./a11yscan.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	ui         = flag.Bool("ui", false, "Enable terminal UI mode")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("a11yscan v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./a11yscan.toml" {
			cfg, err = config.Load("./a11yscan.example.toml")
		}
		if err != nil {
			slog.Warn("no config file found, using defaults", "path", *configPath)
			cfg = config.Default()
		}
	}

	if flag.NArg() > 0 {
		cfg.ScanPaths = []string{flag.Arg(0)}
	}

	ctx := context.Background()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Shutdown(ctx)

	if err := app.StartObservability(ctx); err != nil {
		slog.Error("failed to start observability", "error", err)
		os.Exit(1)
	}

	// Initial scan
	if err := app.InitialScan(ctx); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if err := app.GenerateOutputs(); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}

	if !*ui {
		app.PrintSummary(0)
	}

	if *once {
		app.Shutdown(ctx)
		os.Exit(app.ExitCode())
	}

	// Watch mode
	if err := app.StartWatcher(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "a11yscan", "a11yscan.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "a11yscan", "a11yscan.log")
	}

	return "a11yscan.log"
}
