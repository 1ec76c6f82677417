package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendsLibrary/internal/app"
	"TrendsLibrary/internal/config"
	"TrendsLibrary/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application := app.New(cfg, logger)
	pipeline := application.Site()

	sched := application.SiteScheduler(pipeline)
	if sched == nil {
		if _, err := pipeline.Run(ctx); err != nil {
			logger.Error("site run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := sched.Start(ctx); err != nil {
		logger.Error("scheduler setup failed", "error", err)
		os.Exit(1)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := sched.Stop(stopCtx); err != nil {
		logger.Warn("scheduler stop timed out", "error", err)
	}
}
