package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/segal-development/nurtureflow/internal/logging"
	"github.com/segal-development/nurtureflow/internal/store"
)

// App carries the wiring shared by all flowctl commands.
type App struct {
	cfg    Config
	logger *slog.Logger
}

func newApp() *App {
	cfg := loadConfig()
	return &App{
		cfg:    cfg,
		logger: newLogger(cfg),
	}
}

func newLogger(cfg Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}
	var inner slog.Handler
	if cfg.LogFormat == "json" {
		inner = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		inner = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(logging.NewCorrelationHandler(inner))
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

// openStore opens the configured backend: Postgres when a DSN is set,
// otherwise an embedded libSQL database. The caller must Close it.
func (a *App) openStore(ctx context.Context) (store.Store, error) {
	if a.cfg.PostgresDSN != "" {
		pool, err := pgxpool.New(ctx, a.cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPGStore(pool), nil
	}

	if err := os.MkdirAll(filepath.Dir(a.cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return store.NewLibSQLStore("file:" + a.cfg.DBPath)
}
