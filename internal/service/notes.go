package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/exp/slog"

	"noteminder/internal/auth"
	"noteminder/models"
	"noteminder/repository"
)

const (
	defaultUserPage = 50
	maxUserPage     = 500
)

// NoteInput is what a front end submits when adding or editing a note.
// Category is a category name; empty means uncategorised.
type NoteInput struct {
	Title        string
	Content      string
	ReminderTime string
	Category     string
}

// Notes implements the note operations on behalf of an authenticated owner.
type Notes struct {
	users      repository.UserRepositoryI
	categories repository.CategoryRepositoryI
	notes      repository.NoteRepositoryI
	log        *slog.Logger
}

func NewNotes(users repository.UserRepositoryI, categories repository.CategoryRepositoryI, notes repository.NoteRepositoryI, log *slog.Logger) *Notes {
	return &Notes{
		users:      users,
		categories: categories,
		notes:      notes,
		log:        log.With("component", "notes"),
	}
}

func (s *Notes) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *Notes) resolveCategory(ctx context.Context, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	c, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lookup category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("%w: %q", repository.ErrUnknownCategory, name)
	}
	return &c.ID, nil
}

func (s *Notes) build(ctx context.Context, ownerID int64, in NoteInput) (*models.Note, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", auth.ErrInvalidInput)
	}
	categoryID, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	return &models.Note{
		Title:        title,
		Content:      in.Content,
		ReminderTime: strings.TrimSpace(in.ReminderTime),
		UserID:       ownerID,
		CategoryID:   categoryID,
	}, nil
}

// Create adds a note for ownerID with the reminder armed.
func (s *Notes) Create(ctx context.Context, ownerID int64, in NoteInput) (*models.Note, error) {
	n, err := s.build(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	created, err := s.notes.Create(ctx, n)
	if err != nil {
		return nil, err
	}
	s.log.Info("note created", "note_id", created.ID, "user_id", ownerID, "reminder_time", created.ReminderTime)
	return s.Get(ctx, ownerID, created.ID)
}

func (s *Notes) List(ctx context.Context, ownerID int64) ([]models.Note, error) {
	return s.notes.ListByOwner(ctx, ownerID)
}

// Get returns an owned note. A missing note is ErrNotFound.
func (s *Notes) Get(ctx context.Context, ownerID, id int64) (*models.Note, error) {
	n, err := s.notes.GetForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, fmt.Errorf("note %d: %w", id, err)
	}
	if n == nil {
		return nil, fmt.Errorf("note %d: %w", id, repository.ErrNotFound)
	}
	return n, nil
}

// Update replaces the fields of an owned note and returns the stored result.
func (s *Notes) Update(ctx context.Context, ownerID, id int64, in NoteInput) (*models.Note, error) {
	n, err := s.build(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	n.ID = id
	if err := s.notes.Update(ctx, ownerID, n); err != nil {
		return nil, err
	}
	s.log.Info("note updated", "note_id", id, "user_id", ownerID)
	return s.Get(ctx, ownerID, id)
}

func (s *Notes) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.notes.Delete(ctx, ownerID, id); err != nil {
		return err
	}
	s.log.Info("note deleted", "note_id", id, "user_id", ownerID)
	return nil
}

// Users lists accounts without secrets. The requester must currently hold
// the admin role.
func (s *Notes) Users(ctx context.Context, requesterID int64, limit, offset int) ([]models.User, error) {
	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("lookup requester: %w", err)
	}
	if requester == nil || !requester.IsAdmin() {
		return nil, fmt.Errorf("list users: %w", repository.ErrPermissionDenied)
	}
	if limit <= 0 {
		limit = defaultUserPage
	}
	if limit > maxUserPage {
		limit = maxUserPage
	}
	if offset < 0 {
		offset = 0
	}
	return s.users.List(ctx, limit, offset)
}
