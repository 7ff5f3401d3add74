// Service simulator replays the greenhouse dataset over MQTT, one message
// per reading at a fixed interval. It is a thin producer: all validation
// and persistence happens downstream in the edge pipeline.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/simulator"
)

func main() {
	cfg := config.LoadSimulator()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	rows, err := simulator.ReadCSV(cfg.CSVPath)
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		os.Exit(1)
	}

	pub, closeFn, err := simulator.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to broker", "error", err)
		os.Exit(1)
	}
	defer closeFn()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	simulator.Run(ctx, cfg, pub, rows)
}
