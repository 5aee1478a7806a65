package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/api"
	"github.com/notifyhub/push-fanout/internal/config"
	"github.com/notifyhub/push-fanout/internal/db"
	"github.com/notifyhub/push-fanout/internal/metrics"
	"github.com/notifyhub/push-fanout/internal/provider"
	"github.com/notifyhub/push-fanout/internal/ratelimiter"
	"github.com/notifyhub/push-fanout/internal/recipient"
	"github.com/notifyhub/push-fanout/internal/repository"
	"github.com/notifyhub/push-fanout/internal/service"
	"github.com/notifyhub/push-fanout/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	notifRepo := repository.NewPgNotificationRepository(pool)
	queueRepo := repository.NewPgQueueRepository(pool)
	source := recipient.NewPgSource(pool)
	sink := provider.NewWebhookSink(cfg.GatewayBaseURL, cfg.GatewayTimeout, logger)
	limiter := ratelimiter.New(cfg.DeliveryRateLimit)

	svc := service.NewNotificationService(
		notifRepo, queueRepo, source, cfg.FanOutPageSize, logger, m.OnQueued)

	onSent, onFailed, onCycle := m.DrainHooks()
	drainer := service.NewDrainer(
		queueRepo, notifRepo, sink, limiter,
		cfg.DrainChunkSize, cfg.DrainMaxPerRun, logger,
		service.DrainHooks{OnSent: onSent, OnFailed: onFailed, OnCycle: onCycle})

	// ---- background drain trigger ----
	// Context for the drain worker; cancelled on shutdown signal.
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	drainW := worker.NewDrainWorker(drainer, cfg.DrainInterval, logger)
	go drainW.Run(workerCtx)

	// ---- HTTP server ----
	router := api.NewRouter(svc, drainer, queueRepo, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Stop the drain trigger. An in-flight cycle stops at its next
	// chunk boundary; already-deleted chunks are final, the rest stays
	// queued for the next start.
	cancelWorker()

	logger.Info("server stopped cleanly")
}
