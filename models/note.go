package models

import (
	"fmt"
	"strings"
	"time"
)

// ReminderLayout is the stored text format of a reminder time: minute
// precision, no timezone.
const ReminderLayout = "2006-01-02 15:04"

// Note is a user-owned record with a scheduled reminder.
// CategoryID is nullable; CategoryName is filled by listing queries (LEFT JOIN).
type Note struct {
	ID           int64   `db:"id" json:"id"`
	Title        string  `db:"title" json:"title"`
	Content      string  `db:"content" json:"content"`
	ReminderTime string  `db:"reminder_time" json:"reminder_time"`
	Notified     bool    `db:"notified" json:"notified"`
	UserID       int64   `db:"user_id" json:"user_id"`
	CategoryID   *int64  `db:"category_id" json:"category_id,omitempty"`
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
}

// ParseReminderTime parses s in ReminderLayout within loc.
// Surrounding whitespace is not accepted so the stored value round-trips exactly.
func ParseReminderTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if s != strings.TrimSpace(s) {
		return time.Time{}, fmt.Errorf("reminder time %q has surrounding whitespace", s)
	}
	t, err := time.ParseInLocation(ReminderLayout, s, loc)
	if err != nil {
		return time.Time{}, err
	}
	// The layout's hour accepts a single digit; require the canonical form.
	if t.Format(ReminderLayout) != s {
		return time.Time{}, fmt.Errorf("reminder time %q is not in YYYY-MM-DD HH:MM form", s)
	}
	return t, nil
}

// Due reports whether the reminder time is at or before now.
// Unparseable reminder times are reported through the error.
func (n *Note) Due(now time.Time) (bool, error) {
	at, err := ParseReminderTime(n.ReminderTime, now.Location())
	if err != nil {
		return false, err
	}
	return !at.After(now), nil
}
