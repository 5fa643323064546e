// Package main runs the interactive taximeter console.
// Logs go to a per-session file under LOG_DIR so they never mix with the
// rendered output.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fatih/color"

	"github.com/pkordes/taximeter/internal/app"
	"github.com/pkordes/taximeter/internal/config"
	"github.com/pkordes/taximeter/internal/shell"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "taximeter:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	name := filepath.Join(cfg.LogDir, "taximeter_"+time.Now().Format("20060102_150405")+".log")
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	logger.Info("taximeter application started", "log_file", name)
	defer logger.Info("application terminated")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	// color.NoColor is true when stdout is not a terminal or NO_COLOR is set.
	sh := shell.New(deps.Meter, os.Stdin, color.Output,
		shell.WithColor(!color.NoColor),
		shell.WithHistory(deps.Receipts),
		shell.WithLogger(logger),
	)
	return sh.Run(ctx)
}
