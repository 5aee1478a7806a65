package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/push-fanout/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (title, message, country_id, sent_count, failed_count, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 0, $4, $5)
		RETURNING id`,
		n.Title, n.Message, n.CountryID, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	if err != nil {
		// The country_id foreign key is the only constraint a valid
		// request can trip; surface it as a validation failure.
		if strings.Contains(err.Error(), "country_id") {
			return domain.ErrUnknownTarget
		}
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) GetStats(ctx context.Context, id int64) (*domain.NotificationStats, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT
			p.id,
			p.title,
			p.message,
			p.sent_count,
			p.failed_count,
			COUNT(q.id) AS pending_count
		FROM notifications p
		LEFT JOIN notification_queue q ON q.notification_id = p.id
		WHERE p.id = $1
		GROUP BY p.id`, id)

	var s domain.NotificationStats
	err := row.Scan(&s.ID, &s.Title, &s.Message, &s.SentCount, &s.FailedCount, &s.Pending)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get notification stats: %w", err)
	}
	s.Total = s.SentCount + s.FailedCount + s.Pending
	return &s, nil
}

func (r *pgNotificationRepository) ApplyStatDeltas(ctx context.Context, deltas map[int64]domain.StatDelta) map[int64]error {
	failures := make(map[int64]error)
	for id, d := range deltas {
		_, err := r.pool.Exec(ctx, `
			UPDATE notifications
			SET sent_count = sent_count + $1,
			    failed_count = failed_count + $2,
			    updated_at = NOW()
			WHERE id = $3`, d.Sent, d.Failed, id)
		if err != nil {
			failures[id] = fmt.Errorf("apply stat delta: %w", err)
		}
	}
	return failures
}
