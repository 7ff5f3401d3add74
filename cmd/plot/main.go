// Service plot prints an ASCII trend chart of one metric for one device
// (or all metrics with PLOT_METRIC=all), read-only, then exits. It stands
// alongside the viewer and dashboard as a thin consumer of the store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/db"
	"github.com/YusufAkyuz/IoT-Project/internal/plot"
)

func main() {
	cfg := config.LoadPlot()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := db.OpenReader(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	ps := plot.NewStore(store)

	// PLOT_METRIC=all charts every metric, one stacked chart per field.
	if cfg.Metric == "all" {
		byMetric, err := ps.SeriesAll(ctx, cfg.DeviceID, cfg.Limit, cfg.DedupTS)
		if err != nil {
			slog.Error("failed to fetch series", "error", err)
			os.Exit(1)
		}
		fmt.Print(plot.RenderAll(cfg.DeviceID, byMetric, cfg.Window))
		return
	}

	pts, err := ps.Series(ctx, cfg.DeviceID, cfg.Metric, cfg.Limit, cfg.DedupTS)
	if err != nil {
		slog.Error("failed to fetch series", "error", err)
		os.Exit(1)
	}

	fmt.Print(plot.Render(cfg.Metric, cfg.DeviceID, pts, cfg.Window))
}
