// Package db provides helpers for opening the SQLite telemetry store and
// running migrations.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // sqlite driver
)

// OpenWriter opens the store for the single pipeline writer. WAL journal
// mode lets read-only consumers see committed rows while the writer is
// active. The pool is capped at one connection: the pipeline is the only
// writer by design, and a second connection would just fight the first for
// the write lock.
func OpenWriter(ctx context.Context, path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?%s", url.PathEscape(path), writerPragmas)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	slog.Info("store opened", "path", path, "mode", "read-write")
	return db, nil
}

// OpenReader opens the store for a read-only consumer. Readers may attach
// at any time; the busy timeout covers the brief moments the writer holds
// the WAL lock.
func OpenReader(ctx context.Context, path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&%s", url.PathEscape(path), readerPragmas)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	slog.Info("store opened", "path", path, "mode", "read-only")
	return db, nil
}

// Healthy returns nil when the database is reachable.
func Healthy(ctx context.Context, db *sql.DB) error {
	return db.PingContext(ctx)
}

const (
	writerPragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)&_pragma=synchronous(NORMAL)"
	readerPragmas = "_pragma=query_only(1)&_pragma=busy_timeout(2000)"
)
