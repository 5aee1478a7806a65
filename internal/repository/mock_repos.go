package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/notifyhub/push-fanout/internal/domain"
)

// MockQueueRepository is a hand-written, in-memory implementation of
// QueueRepository used in unit tests. No mock-generation library needed.
//
// IDs are assigned monotonically, mirroring the bigserial column the
// real store pages on.
type MockQueueRepository struct {
	mu      sync.Mutex
	entries map[int64]domain.QueueEntry
	nextID  int64

	// Optional error overrides — set in tests to simulate failure paths.
	ListChunkErr error
	DeleteErr    error
	// FailInsertOnPage makes the n-th InsertBatch call fail (1-based).
	// Zero disables the override. Used to exercise partial fan-out.
	FailInsertOnPage int
	FailInsertErr    error

	insertCalls int
}

func NewMockQueueRepository() *MockQueueRepository {
	return &MockQueueRepository{entries: make(map[int64]domain.QueueEntry)}
}

func (m *MockQueueRepository) InsertBatch(_ context.Context, notificationID int64, payloads []domain.QueuePayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCalls++
	if m.FailInsertOnPage > 0 && m.insertCalls == m.FailInsertOnPage {
		return m.FailInsertErr
	}

	for _, p := range payloads {
		m.nextID++
		m.entries[m.nextID] = domain.QueueEntry{
			ID:             m.nextID,
			NotificationID: notificationID,
			Payload:        p,
			Status:         domain.QueueStatusPending,
		}
	}
	return nil
}

func (m *MockQueueRepository) ListChunk(_ context.Context, beforeID *int64, limit int) ([]domain.QueueEntry, error) {
	if m.ListChunkErr != nil {
		return nil, m.ListChunkErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]int64, 0, len(m.entries))
	for id := range m.entries {
		if beforeID != nil && id >= *beforeID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	if len(ids) > limit {
		ids = ids[:limit]
	}

	chunk := make([]domain.QueueEntry, len(ids))
	for i, id := range ids {
		chunk[i] = m.entries[id]
	}
	return chunk, nil
}

func (m *MockQueueRepository) DeleteByIDs(_ context.Context, ids []int64) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	// Missing ids are silently skipped: bulk delete is idempotent.
	for _, id := range ids {
		delete(m.entries, id)
	}
	return nil
}

func (m *MockQueueRepository) CountPending(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

// MockNotificationRepository is the in-memory NotificationRepository
// counterpart. It reads pending counts from the queue mock so GetStats
// behaves like the real LEFT JOIN query.
type MockNotificationRepository struct {
	mu            sync.Mutex
	notifications map[int64]*domain.Notification
	nextID        int64
	queue         *MockQueueRepository

	CreateErr   error
	GetStatsErr error
	// ApplyErrFor injects a per-notification reconciliation failure.
	ApplyErrFor map[int64]error
}

func NewMockNotificationRepository(queue *MockQueueRepository) *MockNotificationRepository {
	return &MockNotificationRepository{
		notifications: make(map[int64]*domain.Notification),
		queue:         queue,
	}
}

func (m *MockNotificationRepository) Create(_ context.Context, n *domain.Notification) error {
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	n.ID = m.nextID
	clone := *n
	m.notifications[n.ID] = &clone
	return nil
}

func (m *MockNotificationRepository) GetStats(_ context.Context, id int64) (*domain.NotificationStats, error) {
	if m.GetStatsErr != nil {
		return nil, m.GetStatsErr
	}
	m.mu.Lock()
	n, ok := m.notifications[id]
	if !ok {
		m.mu.Unlock()
		return nil, domain.ErrNotFound
	}
	clone := *n
	m.mu.Unlock()

	var pending int64
	if m.queue != nil {
		m.queue.mu.Lock()
		for _, e := range m.queue.entries {
			if e.NotificationID == id {
				pending++
			}
		}
		m.queue.mu.Unlock()
	}

	return &domain.NotificationStats{
		ID:          clone.ID,
		Title:       clone.Title,
		Message:     clone.Message,
		SentCount:   clone.SentCount,
		FailedCount: clone.FailedCount,
		Pending:     pending,
		Total:       clone.SentCount + clone.FailedCount + pending,
	}, nil
}

func (m *MockNotificationRepository) ApplyStatDeltas(_ context.Context, deltas map[int64]domain.StatDelta) map[int64]error {
	m.mu.Lock()
	defer m.mu.Unlock()

	failures := make(map[int64]error)
	for id, d := range deltas {
		if err, ok := m.ApplyErrFor[id]; ok {
			failures[id] = err
			continue
		}
		if n, ok := m.notifications[id]; ok {
			n.SentCount += d.Sent
			n.FailedCount += d.Failed
			n.UpdatedAt = time.Now().UTC()
		}
	}
	return failures
}
