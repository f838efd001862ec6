package repository

import (
	"context"
	"errors"
	"testing"

	"noteminder/internal/db"
	"noteminder/models"
)

type noteFixture struct {
	notes    *NoteRepository
	alice    *models.User
	bob      *models.User
	category models.Category
}

func newNoteFixture(t *testing.T, name string) *noteFixture {
	t.Helper()
	d, err := db.Open("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })

	ctx := context.Background()
	users := NewUserRepository(d)
	alice, err := users.Create(ctx, "alice", "h1", models.RoleUser)
	if err != nil {
		t.Fatalf("create alice: %v", err)
	}
	bob, err := users.Create(ctx, "bob", "h2", models.RoleUser)
	if err != nil {
		t.Fatalf("create bob: %v", err)
	}
	cats, err := NewCategoryRepository(d).List(ctx)
	if err != nil || len(cats) == 0 {
		t.Fatalf("categories: %v", err)
	}
	return &noteFixture{notes: NewNoteRepository(d), alice: alice, bob: bob, category: cats[0]}
}

func (f *noteFixture) create(t *testing.T, owner *models.User, title, at string) *models.Note {
	t.Helper()
	cat := f.category.ID
	n, err := f.notes.Create(context.Background(), &models.Note{
		Title: title, Content: "C-" + title, ReminderTime: at, UserID: owner.ID, CategoryID: &cat,
	})
	if err != nil {
		t.Fatalf("create note %s: %v", title, err)
	}
	return n
}

func TestNoteRepository_CreateRoundTripsTimestamp(t *testing.T) {
	f := newNoteFixture(t, "noteroundtrip")
	ctx := context.Background()

	for _, at := range []string{"2000-01-01 00:00", "2031-12-31 23:59", "2024-02-29 07:05"} {
		n := f.create(t, f.alice, "T "+at, at)
		if n.ID == 0 || n.Notified {
			t.Fatalf("unexpected created note: %+v", n)
		}
		got, err := f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
		if err != nil || got == nil {
			t.Fatalf("get: %v %+v", err, got)
		}
		if got.ReminderTime != at {
			t.Fatalf("reminder_time %q stored as %q", at, got.ReminderTime)
		}
		if got.CategoryName == nil || *got.CategoryName != f.category.Name {
			t.Fatalf("category name not joined: %+v", got)
		}
	}
}

func TestNoteRepository_InvalidTimestampPersistsNothing(t *testing.T) {
	f := newNoteFixture(t, "notebadtime")
	ctx := context.Background()

	for _, at := range []string{"", "2000-01-01", "2000/01/01 10:00", "2000-01-01 10:00:00", "2000-02-30 10:00", "noon"} {
		_, err := f.notes.Create(ctx, &models.Note{Title: "x", Content: "y", ReminderTime: at, UserID: f.alice.ID})
		if !errors.Is(err, ErrInvalidTimestamp) {
			t.Fatalf("create %q: expected ErrInvalidTimestamp, got %v", at, err)
		}
	}
	list, err := f.notes.ListByOwner(ctx, f.alice.ID)
	if err != nil || len(list) != 0 {
		t.Fatalf("expected no notes, got %d err=%v", len(list), err)
	}

	n := f.create(t, f.alice, "keep", "2030-01-01 10:00")
	bad := *n
	bad.Title = "changed"
	bad.ReminderTime = "2030-01-01 25:00"
	if err := f.notes.Update(ctx, f.alice.ID, &bad); !errors.Is(err, ErrInvalidTimestamp) {
		t.Fatalf("update: expected ErrInvalidTimestamp, got %v", err)
	}
	got, _ := f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
	if got.Title != "keep" || got.ReminderTime != "2030-01-01 10:00" {
		t.Fatalf("note mutated by failed update: %+v", got)
	}
}

func TestNoteRepository_UnknownCategoryAndOwner(t *testing.T) {
	f := newNoteFixture(t, "notefk")
	ctx := context.Background()

	missing := int64(9999)
	_, err := f.notes.Create(ctx, &models.Note{Title: "x", Content: "y", ReminderTime: "2030-01-01 10:00", UserID: f.alice.ID, CategoryID: &missing})
	if !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected ErrUnknownCategory, got %v", err)
	}
	_, err = f.notes.Create(ctx, &models.Note{Title: "x", Content: "y", ReminderTime: "2030-01-01 10:00", UserID: 4242})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing owner, got %v", err)
	}

	// A note without category is allowed.
	n, err := f.notes.Create(ctx, &models.Note{Title: "plain", Content: "y", ReminderTime: "2030-01-01 10:00", UserID: f.alice.ID})
	if err != nil {
		t.Fatalf("create without category: %v", err)
	}
	got, _ := f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
	if got.CategoryID != nil || got.CategoryName != nil {
		t.Fatalf("expected null category: %+v", got)
	}
}

func TestNoteRepository_UpdateOwnershipKeepsNotified(t *testing.T) {
	f := newNoteFixture(t, "noteupdate")
	ctx := context.Background()

	n := f.create(t, f.alice, "T", "2000-01-01 00:00")
	if ok, err := f.notes.MarkNotified(ctx, n.ID, n.ReminderTime); err != nil || !ok {
		t.Fatalf("mark: ok=%v err=%v", ok, err)
	}

	// Bob cannot edit Alice's note.
	stolen := *n
	stolen.Title = "mine now"
	if err := f.notes.Update(ctx, f.bob.ID, &stolen); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := f.notes.GetForOwner(ctx, f.bob.ID, n.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied on get, got %v", err)
	}

	// Same reminder time keeps the notified flag.
	edit := *n
	edit.Title = "T2"
	edit.Content = "C2"
	edit.CategoryID = nil
	if err := f.notes.Update(ctx, f.alice.ID, &edit); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
	if got.Title != "T2" || got.Content != "C2" || got.CategoryID != nil || !got.Notified {
		t.Fatalf("unexpected after update: %+v", got)
	}

	// A new reminder time does not reverse the notified flag.
	edit.ReminderTime = "2040-06-01 09:30"
	if err := f.notes.Update(ctx, f.alice.ID, &edit); err != nil {
		t.Fatalf("reschedule: %v", err)
	}
	got, _ = f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
	if got.ReminderTime != "2040-06-01 09:30" || !got.Notified {
		t.Fatalf("unexpected after reschedule: %+v", got)
	}

	edit.ID = 777
	if err := f.notes.Update(ctx, f.alice.ID, &edit); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNoteRepository_DeleteIsolatedPerOwner(t *testing.T) {
	f := newNoteFixture(t, "notedelete")
	ctx := context.Background()

	a1 := f.create(t, f.alice, "a1", "2030-01-01 10:00")
	a2 := f.create(t, f.alice, "a2", "2030-01-01 11:00")
	b1 := f.create(t, f.bob, "b1", "2030-01-01 12:00")

	if err := f.notes.Delete(ctx, f.bob.ID, a1.ID); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if err := f.notes.Delete(ctx, f.alice.ID, a1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.notes.Delete(ctx, f.alice.ID, a1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}

	alice, err := f.notes.ListByOwner(ctx, f.alice.ID)
	if err != nil || len(alice) != 1 || alice[0].ID != a2.ID {
		t.Fatalf("alice notes after delete: %+v err=%v", alice, err)
	}
	bob, err := f.notes.ListByOwner(ctx, f.bob.ID)
	if err != nil || len(bob) != 1 || bob[0].ID != b1.ID {
		t.Fatalf("bob notes affected: %+v err=%v", bob, err)
	}
}

func TestNoteRepository_PendingAndMarkNotified(t *testing.T) {
	f := newNoteFixture(t, "notepending")
	ctx := context.Background()

	n1 := f.create(t, f.alice, "n1", "2000-01-01 00:00")
	n2 := f.create(t, f.bob, "n2", "2099-01-01 00:00")

	pending, err := f.notes.ListPending(ctx)
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending: %v len=%d", err, len(pending))
	}

	if ok, err := f.notes.MarkNotified(ctx, n1.ID, n1.ReminderTime); err != nil || !ok {
		t.Fatalf("mark: ok=%v err=%v", ok, err)
	}
	if ok, err := f.notes.MarkNotified(ctx, n1.ID, n1.ReminderTime); err != nil || ok {
		t.Fatalf("mark twice: ok=%v err=%v", ok, err)
	}
	if ok, err := f.notes.MarkNotified(ctx, 9999, n1.ReminderTime); err != nil || ok {
		t.Fatalf("mark missing: ok=%v err=%v", ok, err)
	}
	pending, _ = f.notes.ListPending(ctx)
	if len(pending) != 1 || pending[0].ID != n2.ID {
		t.Fatalf("pending after mark: %+v", pending)
	}
	got, _ := f.notes.GetForOwner(ctx, f.alice.ID, n1.ID)
	if !got.Notified {
		t.Fatalf("notified flag not set")
	}
}

func TestNoteRepository_MarkNotifiedSkipsRescheduledNote(t *testing.T) {
	f := newNoteFixture(t, "notemarkstale")
	ctx := context.Background()

	n := f.create(t, f.alice, "n", "2000-01-01 00:00")
	due := n.ReminderTime

	moved := *n
	moved.ReminderTime = "2999-01-01 00:00"
	if err := f.notes.Update(ctx, f.alice.ID, &moved); err != nil {
		t.Fatalf("reschedule: %v", err)
	}

	ok, err := f.notes.MarkNotified(ctx, n.ID, due)
	if err != nil || ok {
		t.Fatalf("mark with stale time: ok=%v err=%v", ok, err)
	}
	got, _ := f.notes.GetForOwner(ctx, f.alice.ID, n.ID)
	if got.Notified || got.ReminderTime != "2999-01-01 00:00" {
		t.Fatalf("rescheduled note was marked: %+v", got)
	}
}
