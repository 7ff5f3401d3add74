// Service edge is the greenhouse ingestion pipeline: it subscribes to the
// telemetry topic, validates and evaluates each reading, and appends it to
// the SQLite store. It is the store's single writer — run exactly one edge
// process per store file; a second instance against the same file is an
// operational error this process cannot detect for you.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/db"
	"github.com/YusufAkyuz/IoT-Project/internal/edge"
	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

func main() {
	cfg := config.LoadEdge()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))

	// Everything up to the main loop is startup: any failure here is fatal
	// and exits non-zero. Past this point, per-message errors never are.
	eval, err := edge.NewEvaluator(cfg.AlertField, cfg.AlertDirection, cfg.AlertThreshold)
	if err != nil {
		slog.Error("invalid alert configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := db.OpenWriter(ctx, cfg.DBPath)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := db.Migrate(store); err != nil {
		slog.Error("failed to create store schema", "error", err)
		os.Exit(1)
	}

	sub := edge.NewSubscriber(cfg)

	// The initial connect retries forever; only a shutdown signal stops it.
	connectCtx, connectCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer connectCancel()
	if err := sub.Start(connectCtx); err != nil {
		slog.Info("shutdown requested before broker connect completed")
		return
	}
	defer sub.Close()

	writer := edge.NewWriter(store, cfg.WriteRetries, cfg.WriteBackoff)
	pipeline := edge.NewPipeline(eval, writer, sub.Deliveries())

	pipeCtx, pipeCancel := context.WithCancel(context.Background())
	pipeDone := make(chan struct{})
	go func() {
		defer close(pipeDone)
		pipeline.Run(pipeCtx)
	}()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok", Service: "edge"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Healthy(r.Context(), store); err != nil || sub.State() != edge.StateSubscribed {
			writeJSON(w, http.StatusServiceUnavailable, models.HealthResponse{Status: "unavailable", Service: "edge"})
			return
		}
		writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ready", Service: "edge"})
	})
	r.Handle("/metrics", promhttp.Handler())

	serve(cfg.Base, r)

	// HTTP is down; stop the pipeline. Cancellation lands between messages,
	// so the in-flight reading commits (or is explicitly dropped) first.
	pipeCancel()
	<-pipeDone
	slog.Info("pipeline drained, closing store")
}

func serve(cfg config.Base, handler http.Handler) {
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("edge listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig)
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
