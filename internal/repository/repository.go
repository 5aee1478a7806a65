package repository

import (
	"context"

	"github.com/notifyhub/push-fanout/internal/domain"
)

// NotificationRepository defines persistence operations for the
// notification aggregate. The pgx implementation is in
// pg_notification_repo.go; tests use a hand-written mock.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	GetStats(ctx context.Context, id int64) (*domain.NotificationStats, error)
	// ApplyStatDeltas adds the per-notification counter deltas to the
	// stored cumulative counters. Updates are independent: a failure on
	// one notification does not abort the rest. The returned map holds
	// the per-notification errors, keyed by notification ID; it is
	// empty (or nil) when every update succeeded.
	ApplyStatDeltas(ctx context.Context, deltas map[int64]domain.StatDelta) map[int64]error
}

// QueueRepository is the durable ordered store backing the fan-out
// queue: bulk insert on fan-out, keyset-ordered chunk reads and bulk
// deletes on drain.
type QueueRepository interface {
	// InsertBatch writes one fan-out page as a single bulk operation,
	// one row per token.
	InsertBatch(ctx context.Context, notificationID int64, payloads []domain.QueuePayload) error
	// ListChunk returns up to limit entries ordered by id descending,
	// restricted to id < beforeID when beforeID is non-nil.
	ListChunk(ctx context.Context, beforeID *int64, limit int) ([]domain.QueueEntry, error)
	// DeleteByIDs removes the given entries. Deleting ids that no
	// longer exist is a no-op, not an error.
	DeleteByIDs(ctx context.Context, ids []int64) error
	CountPending(ctx context.Context) (int64, error)
}
