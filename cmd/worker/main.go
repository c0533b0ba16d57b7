package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperlens/originality/internal/bootstrap"
	"github.com/paperlens/originality/internal/config"
	"github.com/paperlens/originality/internal/core/ports"
	"github.com/paperlens/originality/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("originality-worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	scanTimeout := time.Duration(cfg.ScanTimeoutSeconds) * time.Second
	logger.Info("worker subscribed", "subject", cfg.NATSRequestSubject, "metrics_port", cfg.WorkerMetricsPort)

	err = app.Queue.SubscribeScanRequests(ctx, func(handlerCtx context.Context, request ports.ScanRequest) error {
		scanCtx, cancel := context.WithTimeout(handlerCtx, scanTimeout)
		defer cancel()

		if !request.EnqueuedAt.IsZero() {
			app.Metrics.ObserveQueueLag("originality-worker", time.Since(request.EnqueuedAt))
		}

		app.Metrics.StartScan()
		started := time.Now()
		scan, scanErr := app.ScanUC.StartScan(scanCtx, request.SubjectID, request.OwnerID, request.Content)
		app.Metrics.FinishScan("originality-worker", time.Since(started), scanErr)
		if scanErr != nil {
			return scanErr
		}

		app.Metrics.RecordScanOutcome("originality-worker", len(scan.Matches), scan.OverallScore)
		if err := app.Queue.PublishScanCompleted(scanCtx, scan.ID); err != nil {
			logger.Warn("publish scan completed failed", "scan_id", scan.ID, "error", err)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
