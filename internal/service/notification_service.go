package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/recipient"
	"github.com/notifyhub/push-fanout/internal/repository"
)

// NotificationService owns notification creation and fan-out.
// Fan-out expands one notification into per-device queue rows by paging
// the recipient source, so the full recipient set is never held in
// memory at once.
type NotificationService struct {
	notifications repository.NotificationRepository
	queue         repository.QueueRepository
	source        recipient.Source
	pageSize      int
	logger        *zap.Logger
	onQueued      func(count int)
}

// NewNotificationService constructs the service. onQueued is an
// optional metrics hook (nil = no-op) counting queue rows written.
func NewNotificationService(
	notifications repository.NotificationRepository,
	queue repository.QueueRepository,
	source recipient.Source,
	pageSize int,
	logger *zap.Logger,
	onQueued func(count int),
) *NotificationService {
	if onQueued == nil {
		onQueued = func(int) {}
	}
	return &NotificationService{
		notifications: notifications,
		queue:         queue,
		source:        source,
		pageSize:      pageSize,
		logger:        logger,
		onQueued:      onQueued,
	}
}

// Create validates and persists a notification, then fans it out to the
// queue.
//
// A fan-out failure after the notification is persisted returns the
// notification together with an error wrapping domain.ErrQueueWrite:
// pages inserted before the failure stay queued and are NOT rolled
// back. The notification's pending count is then simply lower than the
// true recipient set, which the stats endpoint reflects as-is.
func (s *NotificationService) Create(ctx context.Context, req domain.CreateNotificationRequest) (*domain.Notification, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	n := &domain.Notification{
		Title:     req.Title,
		Message:   req.Message,
		CountryID: req.CountryID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, err
	}

	if err := s.fanOut(ctx, n); err != nil {
		s.logger.Error("fan-out aborted",
			zap.Int64("notification_id", n.ID), zap.Error(err))
		return n, err
	}
	return n, nil
}

// fanOut pages the recipient source and writes one bulk insert per
// non-empty page. A short (or empty) page means end-of-recipients.
func (s *NotificationService) fanOut(ctx context.Context, n *domain.Notification) error {
	payload := domain.QueuePayload{Title: n.Title, Message: n.Message}
	queued := 0

	for page := 0; ; page++ {
		tokens, err := s.source.ListTokens(ctx, n.CountryID, s.pageSize, page)
		if err != nil {
			return fmt.Errorf("%w: recipient page %d: %v", domain.ErrQueueWrite, page, err)
		}
		if len(tokens) == 0 {
			break
		}

		payloads := make([]domain.QueuePayload, len(tokens))
		for i, t := range tokens {
			payloads[i] = payload
			payloads[i].Token = t
		}
		if err := s.queue.InsertBatch(ctx, n.ID, payloads); err != nil {
			return fmt.Errorf("%w: insert page %d: %v", domain.ErrQueueWrite, page, err)
		}

		queued += len(tokens)
		s.onQueued(len(tokens))

		if len(tokens) < s.pageSize {
			break
		}
	}

	s.logger.Info("fan-out complete",
		zap.Int64("notification_id", n.ID),
		zap.Int("recipients_queued", queued))
	return nil
}

// GetStats returns the notification's cumulative counters plus the
// live pending-queue count.
func (s *NotificationService) GetStats(ctx context.Context, id int64) (*domain.NotificationStats, error) {
	return s.notifications.GetStats(ctx, id)
}
