package models

import (
	"testing"
	"time"
)

func TestParseReminderTime(t *testing.T) {
	valid := []string{"2000-01-01 00:00", "2024-02-29 23:59", "1999-12-31 12:30"}
	for _, s := range valid {
		got, err := ParseReminderTime(s, time.UTC)
		if err != nil {
			t.Fatalf("ParseReminderTime(%q): %v", s, err)
		}
		if got.Format(ReminderLayout) != s {
			t.Fatalf("round trip %q -> %q", s, got.Format(ReminderLayout))
		}
	}

	invalid := []string{"", "2000-01-01", "2000-13-01 00:00", "2023-02-29 10:00", "2000-01-01 24:00",
		"2000-01-01T00:00", "01.01.2000 00:00", " 2000-01-01 00:00", "2000-01-01 00:00:00", "tomorrow",
		"2000-01-01 0:00", "2000-01-01 9:05"}
	for _, s := range invalid {
		if _, err := ParseReminderTime(s, time.UTC); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestNoteDue(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 30, 0, time.UTC)

	past := &Note{ReminderTime: "2024-05-01 11:59"}
	if due, err := past.Due(now); err != nil || !due {
		t.Fatalf("past note: due=%v err=%v", due, err)
	}
	same := &Note{ReminderTime: "2024-05-01 12:00"}
	if due, err := same.Due(now); err != nil || !due {
		t.Fatalf("same minute: due=%v err=%v", due, err)
	}
	future := &Note{ReminderTime: "2024-05-01 12:01"}
	if due, err := future.Due(now); err != nil || due {
		t.Fatalf("future note: due=%v err=%v", due, err)
	}
	broken := &Note{ReminderTime: "soon"}
	if _, err := broken.Due(now); err == nil {
		t.Fatalf("expected parse error")
	}
}
