package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/notifyhub/push-fanout/internal/domain"
	"github.com/notifyhub/push-fanout/internal/provider"
	"github.com/notifyhub/push-fanout/internal/ratelimiter"
	"github.com/notifyhub/push-fanout/internal/repository"
)

// DrainHooks carries the metric callbacks injected by main.
// Using a struct keeps the drainer constructor signature clean.
type DrainHooks struct {
	OnSent   func()
	OnFailed func()
	OnCycle  func(processed int, elapsed time.Duration)
}

// Drainer performs one bounded pass over the queue per RunCycle call:
// read a chunk, attempt delivery per row, bulk-delete the chunk, repeat
// until the queue is empty or the per-run cap is reached.
//
// Delivery here is at-least-once: rows are deleted only after the whole
// chunk has been attempted, with no transaction tying the two together.
// A crash between delivery and deletion re-delivers that chunk on the
// next cycle. Do not "fix" this by deleting per-row or inside the sink
// call; the duplicate-on-crash window is the accepted trade-off for
// bulk cleanup.
//
// Concurrent cycles would race on the keyset cursor and the bulk
// deletes, so overlapping RunCycle calls are rejected with
// ErrDrainInProgress. Mutual exclusion across processes is the
// caller's responsibility.
type Drainer struct {
	queue         repository.QueueRepository
	notifications repository.NotificationRepository
	sink          provider.Sink
	limiter       *ratelimiter.DeliveryLimiter
	chunkSize     int
	maxPerRun     int
	logger        *zap.Logger
	hooks         DrainHooks

	mu sync.Mutex
}

// NewDrainer constructs a drainer. Hook fields are optional (nil = no-op).
func NewDrainer(
	queue repository.QueueRepository,
	notifications repository.NotificationRepository,
	sink provider.Sink,
	limiter *ratelimiter.DeliveryLimiter,
	chunkSize int,
	maxPerRun int,
	logger *zap.Logger,
	hooks DrainHooks,
) *Drainer {
	if hooks.OnSent == nil {
		hooks.OnSent = func() {}
	}
	if hooks.OnFailed == nil {
		hooks.OnFailed = func() {}
	}
	if hooks.OnCycle == nil {
		hooks.OnCycle = func(int, time.Duration) {}
	}
	return &Drainer{
		queue:         queue,
		notifications: notifications,
		sink:          sink,
		limiter:       limiter,
		chunkSize:     chunkSize,
		maxPerRun:     maxPerRun,
		logger:        logger,
		hooks:         hooks,
	}
}

// tally accumulates one notification's delivery outcomes in memory for
// the duration of a cycle. Title and message ride along from the queue
// payload so the cycle result is self-contained.
type tally struct {
	title   string
	message string
	sent    int64
	failed  int64
}

// RunCycle executes one drain cycle and returns the per-notification
// outcome of this run (empty slice when the queue was empty).
//
// The cap is enforced at chunk granularity, checked strictly between
// completed chunks: a chunk is never read, half-processed, and
// discarded. With the default cap 100000 and chunk 10000 a full
// backlog yields exactly 10 chunks per cycle.
func (d *Drainer) RunCycle(ctx context.Context) ([]domain.DrainResult, error) {
	if !d.mu.TryLock() {
		return nil, domain.ErrDrainInProgress
	}
	defer d.mu.Unlock()

	start := time.Now()
	processed := 0
	var cursor *int64

	// tallies holds finalized chunks only. Each chunk accumulates into
	// its own map and is merged in after its bulk delete succeeds: a
	// chunk whose rows survive (delete failed, ctx cancelled) will be
	// re-delivered next cycle, so counting it now would double-count.
	// Finalized chunks are the opposite case — their rows are gone, so
	// their counts must be reconciled even when the cycle aborts.
	tallies := make(map[int64]*tally)

	for processed < d.maxPerRun {
		chunk, err := d.queue.ListChunk(ctx, cursor, d.chunkSize)
		if err != nil {
			d.reconcile(ctx, tallies)
			return nil, fmt.Errorf("read queue chunk: %w", err)
		}
		if len(chunk) == 0 {
			break
		}

		ids := make([]int64, len(chunk))
		chunkTallies := make(map[int64]*tally)
		for i, e := range chunk {
			ids[i] = e.ID

			if err := d.limiter.Wait(ctx); err != nil {
				// ctx cancelled mid-chunk: this chunk's rows stay
				// queued and its tallies are dropped (at-least-once).
				d.reconcile(ctx, tallies)
				return nil, err
			}

			t := chunkTallies[e.NotificationID]
			if t == nil {
				t = &tally{title: e.Payload.Title, message: e.Payload.Message}
				chunkTallies[e.NotificationID] = t
			}
			if d.sink.Deliver(ctx, e.Payload.Title, e.Payload.Message, e.Payload.Token) {
				t.sent++
				d.hooks.OnSent()
			} else {
				t.failed++
				d.hooks.OnFailed()
			}
		}

		// Chunks come back ordered by id descending, so the last entry
		// is the minimum id seen: the strict upper bound for the next
		// chunk's keyset read.
		next := chunk[len(chunk)-1].ID
		cursor = &next

		if err := d.queue.DeleteByIDs(ctx, ids); err != nil {
			d.reconcile(ctx, tallies)
			return nil, fmt.Errorf("delete consumed chunk: %w", err)
		}
		for id, ct := range chunkTallies {
			t := tallies[id]
			if t == nil {
				tallies[id] = ct
				continue
			}
			t.sent += ct.sent
			t.failed += ct.failed
		}
		processed += len(chunk)
	}

	if processed == 0 {
		return []domain.DrainResult{}, nil
	}

	d.reconcile(ctx, tallies)

	results := make([]domain.DrainResult, 0, len(tallies))
	for id, t := range tallies {
		results = append(results, domain.DrainResult{
			NotificationID: id,
			Title:          t.title,
			Message:        t.message,
			Sent:           t.sent,
			Failed:         t.failed,
		})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].NotificationID < results[j].NotificationID
	})

	elapsed := time.Since(start)
	d.hooks.OnCycle(processed, elapsed)
	d.logger.Info("drain cycle complete",
		zap.Int("processed", processed),
		zap.Int("notifications", len(results)),
		zap.Duration("elapsed", elapsed))
	return results, nil
}

// reconcile applies the cycle's tallies as additive counter updates.
// Per-notification failures are logged and skipped, never fatal: a
// counter that missed an update is stale, not corrupt, and the
// remaining notifications still get theirs.
func (d *Drainer) reconcile(ctx context.Context, tallies map[int64]*tally) {
	if len(tallies) == 0 {
		return
	}
	deltas := make(map[int64]domain.StatDelta, len(tallies))
	for id, t := range tallies {
		deltas[id] = domain.StatDelta{Sent: t.sent, Failed: t.failed}
	}

	for id, err := range d.notifications.ApplyStatDeltas(ctx, deltas) {
		d.logger.Error("reconcile notification counters",
			zap.Int64("notification_id", id), zap.Error(err))
	}
}
