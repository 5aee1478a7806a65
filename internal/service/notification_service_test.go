package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/recipient"
	"github.com/notifyhub/push-fanout/internal/repository"
	"github.com/notifyhub/push-fanout/internal/service"
)

const testPageSize = 5

func tokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("token-%04d", i)
	}
	return out
}

func newService(src recipient.Source) (*service.NotificationService, *repository.MockNotificationRepository, *repository.MockQueueRepository) {
	queue := repository.NewMockQueueRepository()
	repo := repository.NewMockNotificationRepository(queue)
	svc := service.NewNotificationService(repo, queue, src, testPageSize, zap.NewNop(), nil)
	return svc, repo, queue
}

var validReq = domain.CreateNotificationRequest{
	Title:     "Hello",
	Message:   "World",
	CountryID: 4,
}

func TestNotificationService_Create_FanOutCompleteness(t *testing.T) {
	// Queue rows created must equal the recipient count for every
	// alignment of N against the page size.
	counts := []int{0, 1, testPageSize - 1, testPageSize, testPageSize + 1, 2 * testPageSize}

	for _, n := range counts {
		t.Run(fmt.Sprintf("recipients=%d", n), func(t *testing.T) {
			src := recipient.NewStaticSource(map[int64][]string{4: tokens(n)})
			svc, _, queue := newService(src)

			notif, err := svc.Create(context.Background(), validReq)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if notif.ID == 0 {
				t.Fatal("expected a store-assigned notification ID")
			}

			pending, _ := queue.CountPending(context.Background())
			if pending != int64(n) {
				t.Fatalf("expected %d queue entries, got %d", n, pending)
			}
		})
	}
}

func TestNotificationService_Create_QueueEntriesCarryPayload(t *testing.T) {
	src := recipient.NewStaticSource(map[int64][]string{4: {"tok-a", "tok-b"}})
	svc, _, queue := newService(src)

	n, err := svc.Create(context.Background(), validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunk, err := queue.ListChunk(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunk) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(chunk))
	}
	for _, e := range chunk {
		if e.NotificationID != n.ID {
			t.Fatalf("entry references notification %d, want %d", e.NotificationID, n.ID)
		}
		if e.Payload.Title != validReq.Title || e.Payload.Message != validReq.Message {
			t.Fatalf("payload does not carry the notification content: %+v", e.Payload)
		}
		if e.Payload.Token == "" {
			t.Fatal("payload missing device token")
		}
	}
}

func TestNotificationService_Create_InvalidRequest(t *testing.T) {
	src := recipient.NewStaticSource(nil)
	svc, _, queue := newService(src)

	bad := validReq
	bad.Title = ""
	_, err := svc.Create(context.Background(), bad)
	if err != domain.ErrInvalidTitle {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	// Rejected synchronously: nothing persisted, nothing queued.
	pending, _ := queue.CountPending(context.Background())
	if pending != 0 {
		t.Fatalf("expected empty queue after validation failure, got %d", pending)
	}
}

func TestNotificationService_Create_PartialFanOutKeepsEarlierPages(t *testing.T) {
	src := recipient.NewStaticSource(map[int64][]string{4: tokens(3 * testPageSize)})
	src.ListErr = errors.New("directory unavailable")
	src.ListErrOnPage = 1 // first page succeeds, second fails

	svc, _, queue := newService(src)

	n, err := svc.Create(context.Background(), validReq)
	if !errors.Is(err, domain.ErrQueueWrite) {
		t.Fatalf("expected ErrQueueWrite, got %v", err)
	}
	if n == nil || n.ID == 0 {
		t.Fatal("notification should have been persisted before fan-out failed")
	}

	// The first page stays queued; no rollback.
	pending, _ := queue.CountPending(context.Background())
	if pending != testPageSize {
		t.Fatalf("expected %d entries from the completed page, got %d", testPageSize, pending)
	}
}

func TestNotificationService_Create_InsertFailureIsQueueWriteError(t *testing.T) {
	src := recipient.NewStaticSource(map[int64][]string{4: tokens(2 * testPageSize)})
	queue := repository.NewMockQueueRepository()
	queue.FailInsertOnPage = 2
	queue.FailInsertErr = errors.New("connection reset")
	repo := repository.NewMockNotificationRepository(queue)
	svc := service.NewNotificationService(repo, queue, src, testPageSize, zap.NewNop(), nil)

	_, err := svc.Create(context.Background(), validReq)
	if !errors.Is(err, domain.ErrQueueWrite) {
		t.Fatalf("expected ErrQueueWrite, got %v", err)
	}

	pending, _ := queue.CountPending(context.Background())
	if pending != testPageSize {
		t.Fatalf("expected %d entries from the first page, got %d", testPageSize, pending)
	}
}

func TestNotificationService_GetStats(t *testing.T) {
	src := recipient.NewStaticSource(map[int64][]string{4: tokens(3)})
	svc, _, _ := newService(src)
	ctx := context.Background()

	n, err := svc.Create(ctx, validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.GetStats(ctx, n.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Pending != 3 || stats.Total != 3 {
		t.Fatalf("expected pending=3 total=3, got pending=%d total=%d", stats.Pending, stats.Total)
	}
	if stats.SentCount != 0 || stats.FailedCount != 0 {
		t.Fatalf("expected zero counters before any drain, got %+v", stats)
	}
}

func TestNotificationService_GetStats_NotFound(t *testing.T) {
	svc, _, _ := newService(recipient.NewStaticSource(nil))
	_, err := svc.GetStats(context.Background(), 999)
	if err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationService_Create_NoRecipients(t *testing.T) {
	src := recipient.NewStaticSource(map[int64][]string{4: nil})
	svc, _, _ := newService(src)
	ctx := context.Background()

	n, err := svc.Create(ctx, validReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats, err := svc.GetStats(ctx, n.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Pending != 0 || stats.Total != 0 {
		t.Fatalf("expected empty stats for zero recipients, got %+v", stats)
	}
}
