package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/service"
)

// DrainWorker triggers a drain cycle on a fixed interval, standing in
// for the external cron that drives the queue in production.
//
// The drainer itself rejects overlapping cycles; if a cycle outlives
// the interval, the skipped tick is logged and the next one tries again.
type DrainWorker struct {
	drainer  *service.Drainer
	interval time.Duration
	logger   *zap.Logger
}

func NewDrainWorker(drainer *service.Drainer, interval time.Duration, logger *zap.Logger) *DrainWorker {
	return &DrainWorker{drainer: drainer, interval: interval, logger: logger}
}

// Run ticks every interval and runs one drain cycle per tick.
// Stops cleanly when ctx is cancelled.
func (dw *DrainWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(dw.interval)
	defer ticker.Stop()

	dw.logger.Info("drain worker started", zap.Duration("interval", dw.interval))

	for {
		select {
		case <-ctx.Done():
			dw.logger.Info("drain worker stopping")
			return
		case <-ticker.C:
			dw.drain(ctx)
		}
	}
}

func (dw *DrainWorker) drain(ctx context.Context) {
	results, err := dw.drainer.RunCycle(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDrainInProgress) {
			dw.logger.Warn("skipping tick: previous drain cycle still running")
			return
		}
		dw.logger.Error("drain cycle failed", zap.Error(err))
		return
	}

	for _, r := range results {
		dw.logger.Info("notification drained",
			zap.Int64("notification_id", r.NotificationID),
			zap.Int64("sent", r.Sent),
			zap.Int64("failed", r.Failed))
	}
}
