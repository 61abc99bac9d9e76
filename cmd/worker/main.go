package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/health-assistant/internal/bootstrap"
	"github.com/kirillkom/health-assistant/internal/config"
	"github.com/kirillkom/health-assistant/internal/core/domain"
	"github.com/kirillkom/health-assistant/internal/observability/logging"
	"github.com/kirillkom/health-assistant/internal/observability/metrics"
)

const serviceName = "worker"

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("dotenv_load_failed", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(serviceName, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{
		Service:      serviceName,
		Breakers:     workerMetrics,
		RequireQueue: true,
	})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if app.History == nil {
		slog.Error("worker_requires_history", "history_backend", cfg.HistoryBackend)
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	slog.Info("worker_subscribed", "subject", cfg.NATSSubject, "metrics_addr", metricsServer.Addr)
	err = app.Queue.SubscribeExchanges(ctx, func(handlerCtx context.Context, exchange domain.Exchange) error {
		workerMetrics.StartExchange()
		start := time.Now()
		if !exchange.CreatedAt.IsZero() {
			workerMetrics.ObserveQueueLag(serviceName, start.Sub(exchange.CreatedAt))
		}

		storeCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()
		err := app.History.Create(storeCtx, &exchange)

		workerMetrics.FinishExchange(serviceName, time.Since(start), err)
		return err
	})
	if err != nil {
		slog.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
