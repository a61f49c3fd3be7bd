// Package sweeper periodically reverses mutes whose expiry has passed.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"anteeq/moderator/internal/config"
	"anteeq/moderator/internal/models"
	"anteeq/moderator/internal/storage"
)

// Notifier receives the unmute event for each expired mute. Delivery is
// at-least-once; consumers deduplicate on the event ID.
type Notifier interface {
	NotifyUnmuted(ctx context.Context, event models.UnmuteEvent) error
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, event models.UnmuteEvent) error

func (f NotifierFunc) NotifyUnmuted(ctx context.Context, event models.UnmuteEvent) error {
	return f(ctx, event)
}

// Sweeper scans for expired mutes on a fixed interval and reverses them.
// It runs on its own timer, never triggered by inbound requests, and is
// safe to run concurrently with mute and unmute calls.
type Sweeper struct {
	Storage  storage.Storage
	Notifier Notifier
	// Interval between sweep passes.
	Interval time.Duration
	// NotifyTimeout bounds each notification, so one unreachable target
	// cannot stall the pass.
	NotifyTimeout time.Duration
}

// New creates a sweeper with the default interval and notify timeout.
func New(s storage.Storage, n Notifier) *Sweeper {
	return &Sweeper{
		Storage:       s,
		Notifier:      n,
		Interval:      config.SweepInterval,
		NotifyTimeout: config.NotifyTimeout,
	}
}

// Run executes sweep passes until the context is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	log.Printf("Mute sweeper started (interval %s)", sw.Interval)
	ticker := time.NewTicker(sw.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Mute sweeper stopped")
			return
		case now := <-ticker.C:
			sw.Sweep(now)
		}
	}
}

// Sweep runs one pass: every mute whose expiry is at or before now is
// announced and deleted. Records are processed independently; a failed
// notification is logged and never blocks the deletion or the rest of
// the batch. The delete is conditioned on the expiry observed during the
// scan, so a mute re-issued mid-pass survives. Returns the number of
// mutes reversed.
func (sw *Sweeper) Sweep(now time.Time) int {
	mutes, err := sw.Storage.ListExpiredMutes(now)
	if err != nil {
		log.Printf("ERROR: Sweep pass failed to list expired mutes: %v", err)
		return 0
	}

	reversed := 0
	for _, m := range mutes {
		event := models.UnmuteEvent{
			ID:         uuid.New().String(),
			ChatID:     m.ChatID,
			UserID:     m.UserID,
			UnmuteTime: m.UnmuteTime,
			Reason:     m.Reason,
		}
		ctx, cancel := context.WithTimeout(context.Background(), sw.NotifyTimeout)
		if err := sw.Notifier.NotifyUnmuted(ctx, event); err != nil {
			log.Printf("ERROR: Failed to notify unmute of user %d in chat %d: %v", m.UserID, m.ChatID, err)
		}
		cancel()

		deleted, err := sw.Storage.DeleteMuteIfUnmuteAt(m.ChatID, m.UserID, m.UnmuteTime)
		if err != nil {
			log.Printf("ERROR: Failed to delete expired mute of user %d in chat %d: %v", m.UserID, m.ChatID, err)
			continue
		}
		if deleted {
			reversed++
		}
	}
	return reversed
}
