package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating parent directories if needed) a sqlite database
// file using the modernc driver.
func OpenSQLite(path string, logger *slog.Logger) (*sql.DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error("db.sqlite.open_error", "path", path, "error", err)
		return nil, err
	}
	// modernc sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)
	logger.Info("db.sqlite.opened", "path", path)
	return db, nil
}

// NewPGPool creates a pgx pool for the postgres index backend.
func NewPGPool(ctx context.Context, url string, dialTimeout time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pc, err := pgxpool.ParseConfig(url)
	if err != nil {
		logger.Error("db.pg.parse_config_error", "error", err)
		return nil, err
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "taxdoc"

	if dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("db.pg.connect_error", "error", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("db.pg.ping_error", "error", err)
		return nil, err
	}
	logger.Info("db.pg.connected")
	return pool, nil
}
