package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notifyhub/push-fanout/internal/domain"
)

type pgQueueRepository struct {
	pool *pgxpool.Pool
}

// NewPgQueueRepository returns a QueueRepository backed by PostgreSQL.
func NewPgQueueRepository(pool *pgxpool.Pool) QueueRepository {
	return &pgQueueRepository{pool: pool}
}

// InsertBatch writes one fan-out page with a single COPY so a 5000-token
// page does not turn into 5000 round trips.
func (r *pgQueueRepository) InsertBatch(ctx context.Context, notificationID int64, payloads []domain.QueuePayload) error {
	rows := make([][]any, len(payloads))
	for i, p := range payloads {
		content, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("marshal queue payload: %w", err)
		}
		rows[i] = []any{notificationID, content, domain.QueueStatusPending}
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"notification_queue"},
		[]string{"notification_id", "content", "status"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("bulk insert queue entries: %w", err)
	}
	return nil
}

// ListChunk pages the queue with a keyset boundary on the row id.
// Descending order plus "id < beforeID" keeps each chunk's cost
// independent of how much of the queue has already been consumed,
// unlike OFFSET which rescans everything before the offset.
func (r *pgQueueRepository) ListChunk(ctx context.Context, beforeID *int64, limit int) ([]domain.QueueEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, notification_id, content, status
		FROM notification_queue
		WHERE $1::bigint IS NULL OR id < $1
		ORDER BY id DESC
		LIMIT $2`, beforeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list queue chunk: %w", err)
	}
	defer rows.Close()

	var entries []domain.QueueEntry
	for rows.Next() {
		var (
			e       domain.QueueEntry
			content []byte
		)
		if err := rows.Scan(&e.ID, &e.NotificationID, &content, &e.Status); err != nil {
			return nil, fmt.Errorf("scan queue entry: %w", err)
		}
		if err := json.Unmarshal(content, &e.Payload); err != nil {
			return nil, fmt.Errorf("decode queue payload %d: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *pgQueueRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx,
		`DELETE FROM notification_queue WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("delete queue entries: %w", err)
	}
	return nil
}

func (r *pgQueueRepository) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notification_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count queue entries: %w", err)
	}
	return n, nil
}
