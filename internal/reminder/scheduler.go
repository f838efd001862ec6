package reminder

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/slog"

	"noteminder/models"
)

const defaultInterval = 60 * time.Second

// Store is the part of the note repository the scheduler needs.
type Store interface {
	ListPending(ctx context.Context) ([]models.Note, error)
	MarkNotified(ctx context.Context, id int64, reminderTime string) (bool, error)
}

// ScanResult summarises one pass over the pending notes.
type ScanResult struct {
	Pending   int // notes with notified=false at the start of the scan
	Fired     int // notes marked notified
	Malformed int // notes skipped because their reminder time does not parse
	Failed    int // notes that could not be marked notified
	Stale     int // notes rescheduled or removed while their reminder was delivered
}

// Scheduler periodically fires due reminders.
type Scheduler struct {
	store    Store
	notifier Notifier
	clock    Clock
	interval time.Duration
	metrics  *Metrics
	log      *slog.Logger
}

type Option func(*Scheduler)

func WithClock(c Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Scheduler) { s.metrics = m }
}

func NewScheduler(store Store, notifier Notifier, log *slog.Logger, opts ...Option) *Scheduler {
	s := &Scheduler{
		store:    store,
		notifier: notifier,
		clock:    RealClock{},
		interval: defaultInterval,
		log:      log.With("component", "reminder"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interval is the pause between two scans.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Scan notifies every pending note whose reminder time has passed and marks
// it notified. A note with a malformed time is logged and skipped. A failed
// notification is logged and the note is still marked, so a reminder never
// fires twice. The mark only applies while the note keeps the reminder time
// that was judged due, so an edit made during delivery survives.
func (s *Scheduler) Scan(ctx context.Context) (ScanResult, error) {
	var res ScanResult
	start := time.Now()
	defer func() { s.metrics.observe(time.Since(start).Seconds()) }()

	pending, err := s.store.ListPending(ctx)
	if err != nil {
		s.metrics.incError(reasonLoad)
		return res, fmt.Errorf("list pending notes: %w", err)
	}
	res.Pending = len(pending)
	now := s.clock.Now()

	for i := range pending {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		n := &pending[i]
		due, err := n.Due(now)
		if err != nil {
			res.Malformed++
			s.metrics.incError(reasonParse)
			s.log.Warn("skipping note with malformed reminder time",
				"note_id", n.ID, "reminder_time", n.ReminderTime, "error", err)
			continue
		}
		if !due {
			continue
		}

		if err := s.notifier.Notify(ctx, "Reminder: "+n.Title, n.Content); err != nil {
			s.metrics.incError(reasonNotify)
			s.log.Warn("notification failed", "note_id", n.ID, "error", err)
		}
		// A delivered reminder is marked even when shutdown has begun.
		marked, err := s.store.MarkNotified(context.WithoutCancel(ctx), n.ID, n.ReminderTime)
		if err != nil {
			res.Failed++
			s.metrics.incError(reasonMark)
			s.log.Error("mark notified failed", "note_id", n.ID, "error", err)
			continue
		}
		if !marked {
			res.Stale++
			s.log.Info("note changed during delivery, left pending", "note_id", n.ID, "reminder_time", n.ReminderTime)
			continue
		}
		res.Fired++
		s.metrics.incFired()
		s.log.Info("reminder fired", "note_id", n.ID, "user_id", n.UserID, "reminder_time", n.ReminderTime)
	}
	return res, nil
}

// Run scans once immediately and then every interval until ctx is done.
// Scan errors are logged and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("reminder scheduler started", "interval", s.interval)
	defer s.log.Info("reminder scheduler stopped")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if res, err := s.Scan(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.log.Error("reminder scan failed", "error", err)
		} else if res.Fired > 0 || res.Malformed > 0 || res.Stale > 0 {
			s.log.Debug("reminder scan done", "pending", res.Pending, "fired", res.Fired, "malformed", res.Malformed, "stale", res.Stale)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
