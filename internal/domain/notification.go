package domain

import "time"

// Notification is the core domain entity: one logical push message
// addressed to every active device in a country.
//
// SentCount and FailedCount are cumulative and only ever grow; the
// drainer updates them through additive deltas so repeated
// reconciliations compose instead of overwriting each other.
type Notification struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	CountryID   int64     `json:"country_id"`
	SentCount   int64     `json:"sent_count"`
	FailedCount int64     `json:"failed_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QueueStatus is persisted on queue rows as an audit trail.
// Consumption is physical deletion, so a row's status is effectively
// always pending for as long as the row exists.
type QueueStatus int

const (
	QueueStatusPending QueueStatus = 0
	QueueStatusSent    QueueStatus = 1
	QueueStatusFailed  QueueStatus = 2
)

// QueuePayload is the serialized content of one queue row: the
// notification's immutable payload paired with a single device token.
type QueuePayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Token   string `json:"token"`
}

// QueueEntry is one unit of pending delivery work. The store assigns a
// monotonically increasing ID on insert; that ID is the keyset cursor
// the drainer pages with.
type QueueEntry struct {
	ID             int64        `json:"id"`
	NotificationID int64        `json:"notification_id"`
	Payload        QueuePayload `json:"payload"`
	Status         QueueStatus  `json:"status"`
}

// NotificationStats is the read model served by the stats endpoint.
// Pending counts queue rows still awaiting a drain pass; Total is the
// whole recipient set as observed so far (sent + failed + pending).
type NotificationStats struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Message     string `json:"message"`
	SentCount   int64  `json:"sent"`
	FailedCount int64  `json:"failed"`
	Pending     int64  `json:"in_progress"`
	Total       int64  `json:"in_queue"`
}

// DrainResult reports what one drain cycle did for one notification.
// Counts are per-run, not cumulative.
type DrainResult struct {
	NotificationID int64  `json:"notification_id"`
	Title          string `json:"title"`
	Message        string `json:"message"`
	Sent           int64  `json:"sent"`
	Failed         int64  `json:"failed"`
}

// StatDelta is the additive counter update the drainer hands to the
// reconciliation step at the end of a cycle.
type StatDelta struct {
	Sent   int64
	Failed int64
}

// CreateNotificationRequest is the inbound payload for creating and
// fanning out a notification.
type CreateNotificationRequest struct {
	Title     string `json:"title"`
	Message   string `json:"message"`
	CountryID int64  `json:"country_id"`
}

func (r *CreateNotificationRequest) Validate() error {
	if r.Title == "" || len(r.Title) > 190 {
		return ErrInvalidTitle
	}
	if r.Message == "" {
		return ErrInvalidMessage
	}
	if r.CountryID <= 0 {
		return ErrUnknownTarget
	}
	return nil
}
