package infra

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ultraauth/auth-api/internal/config"
	"github.com/ultraauth/auth-api/internal/identity"
)

// OpenStore builds the user store selected by DB_ADAPTER. The returned
// function releases any underlying connections.
func OpenStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (identity.Repository, func(), error) {
	switch cfg.DBAdapter {
	case config.AdapterPostgres:
		if cfg.MigrateOnStart {
			if err := ApplyMigrations(cfg.DatabaseURL, logger); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			return nil, nil, err
		}
		return identity.NewPostgresRepository(pool), pool.Close, nil

	case config.AdapterSQLite:
		if dir := filepath.Dir(cfg.SQLiteFile); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("create sqlite dir %s: %w", dir, err)
			}
		}
		repo, err := identity.NewSQLiteRepository(cfg.SQLiteFile)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("close sqlite", "error", err)
			}
		}, nil

	case config.AdapterMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		return identity.NewMemoryRepository(), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported DB_ADAPTER %q", cfg.DBAdapter)
	}
}
