// Service viewer is a read-only polling terminal view over the telemetry
// store. It opens the store file in read-only mode and tolerates an empty
// or still-growing table; it never blocks the pipeline's writes.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/db"
	"github.com/YusufAkyuz/IoT-Project/internal/viewer"
)

func main() {
	cfg := config.LoadViewer()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := waitForStore(ctx, cfg.DBPath, cfg.Refresh)
	if store == nil {
		return
	}
	defer store.Close()

	vs := viewer.NewStore(store)
	ticker := time.NewTicker(cfg.Refresh)
	defer ticker.Stop()

	for {
		snap, err := vs.Snapshot(ctx, cfg.DeviceID, cfg.LastRows, cfg.RateWindow)
		if err != nil {
			slog.Warn("snapshot failed, retrying", "error", err)
		} else {
			fmt.Print("\033[2J\033[H") // clear screen, cursor home
			viewer.Render(os.Stdout, cfg.DeviceID, snap, cfg.RateWindow)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// waitForStore retries the read-only open until the pipeline has created
// the store file, or until the context is cancelled.
func waitForStore(ctx context.Context, path string, interval time.Duration) *sql.DB {
	for {
		store, err := db.OpenReader(ctx, path)
		if err == nil {
			return store
		}
		slog.Info("store not ready, waiting", "path", path, "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
	}
}
