package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"golang.org/x/exp/slog"
)

// Notifier delivers a reminder to the user. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, title, message string) error

func (f NotifierFunc) Notify(ctx context.Context, title, message string) error {
	return f(ctx, title, message)
}

// DesktopNotifier raises an OS notification.
type DesktopNotifier struct {
	timeout time.Duration
	send    func(title, message string) error
}

// NewDesktopNotifier returns a notifier that gives up on a notification
// after timeout.
func NewDesktopNotifier(timeout time.Duration) *DesktopNotifier {
	return &DesktopNotifier{
		timeout: timeout,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

func (d *DesktopNotifier) Notify(ctx context.Context, title, message string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- d.send(title, message) }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification: %w", ctx.Err())
	}
}

// LogNotifier writes reminders to the log. Used on headless machines.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log.With("component", "notifier")}
}

func (l *LogNotifier) Notify(_ context.Context, title, message string) error {
	l.log.Info("reminder", "title", title, "message", message)
	return nil
}
