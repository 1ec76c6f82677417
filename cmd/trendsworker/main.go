package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendsLibrary/internal/app"
	"TrendsLibrary/internal/config"
	"TrendsLibrary/internal/logging"
	"TrendsLibrary/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("worker stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	application := app.New(cfg, logger)
	defer application.Close()

	pool, err := application.Worker(ctx)
	if err != nil {
		return fmt.Errorf("worker setup: %w", err)
	}

	if cfg.Queue.MetricsAddr != "" {
		side := metricsServer(cfg.Queue.MetricsAddr)
		go func() {
			logger.Info("metrics listening", "addr", cfg.Queue.MetricsAddr)
			if err := side.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = side.Shutdown(shutdownCtx)
		}()
	}

	pool.Run(ctx)
	return nil
}

func metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
