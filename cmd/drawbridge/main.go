package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/drawbridge-dev/drawbridge/internal/history"
	"github.com/drawbridge-dev/drawbridge/internal/llm"
	"github.com/drawbridge-dev/drawbridge/internal/logging"
	"github.com/drawbridge-dev/drawbridge/internal/pipeline"
	"github.com/drawbridge-dev/drawbridge/pkg/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "drawbridge:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := loadConfig()

	// Stdout carries the MCP stream, so all logging goes to stderr.
	logger := slog.New(logging.NewCorrelationHandler(
		slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}),
	))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := llm.NewGeminiClient(ctx, cfg.Model)
	if err != nil {
		return fmt.Errorf("init generation client: %w", err)
	}

	pipe, err := pipeline.New(pipeline.Config{
		Completer: completer,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("init pipeline: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	store, err := history.NewLibSQLStore(ctx, "file:"+cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open history store: %w", err)
	}
	defer store.Close()

	if cfg.RetentionDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -cfg.RetentionDays)
		pruned, err := store.Purge(ctx, cutoff)
		if err != nil {
			logger.Warn("failed to prune old sessions", "error", err)
		} else if pruned > 0 {
			logger.Info("pruned old sessions", "count", pruned, "older_than_days", cfg.RetentionDays)
		}
	}

	srv := mcp.NewDiagramServer(mcp.DiagramServerDeps{
		Pipeline: pipe,
		Store:    store,
		Logger:   logger,
	})

	logger.Info("drawbridge mcp server starting", "db_path", cfg.DBPath)
	if err := srv.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
