package repository_test

import (
	"context"
	"testing"

	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/repository"
)

func seedEntries(t *testing.T, q *repository.MockQueueRepository, count int) {
	t.Helper()
	payloads := make([]domain.QueuePayload, count)
	for i := range payloads {
		payloads[i] = domain.QueuePayload{Title: "t", Message: "m", Token: "tok"}
	}
	if err := q.InsertBatch(context.Background(), 1, payloads); err != nil {
		t.Fatalf("seed queue: %v", err)
	}
}

func TestMockQueueRepository_ListChunkKeysetOrder(t *testing.T) {
	q := repository.NewMockQueueRepository()
	seedEntries(t, q, 10)

	chunk, err := q.ListChunk(context.Background(), nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunk) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(chunk))
	}
	for i := 1; i < len(chunk); i++ {
		if chunk[i].ID >= chunk[i-1].ID {
			t.Fatalf("expected strictly descending ids, got %d then %d", chunk[i-1].ID, chunk[i].ID)
		}
	}

	// Entries at or above the boundary must be excluded.
	boundary := chunk[len(chunk)-1].ID
	next, err := q.ListChunk(context.Background(), &boundary, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, e := range next {
		if e.ID >= boundary {
			t.Fatalf("entry %d should be below boundary %d", e.ID, boundary)
		}
	}
}

func TestMockQueueRepository_DeleteIdempotent(t *testing.T) {
	q := repository.NewMockQueueRepository()
	seedEntries(t, q, 3)

	ids := []int64{1, 2, 3}
	if err := q.DeleteByIDs(context.Background(), ids); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	// Deleting ids that no longer exist is a no-op, not an error.
	if err := q.DeleteByIDs(context.Background(), ids); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	if err := q.DeleteByIDs(context.Background(), nil); err != nil {
		t.Fatalf("empty delete should be a no-op, got %v", err)
	}

	n, _ := q.CountPending(context.Background())
	if n != 0 {
		t.Fatalf("expected empty queue, got %d entries", n)
	}
}
