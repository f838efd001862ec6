package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"noteminder/models"
)

type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `n.id, n.title, n.content, n.reminder_time, n.notified, n.user_id, n.category_id, c.name`

const noteFrom = ` FROM notes n LEFT JOIN categories c ON c.id = n.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(s rowScanner) (models.Note, error) {
	var (
		n        models.Note
		category sql.NullInt64
		name     sql.NullString
	)
	if err := s.Scan(&n.ID, &n.Title, &n.Content, &n.ReminderTime, &n.Notified, &n.UserID, &category, &name); err != nil {
		return n, err
	}
	if category.Valid {
		v := category.Int64
		n.CategoryID = &v
	}
	if name.Valid {
		v := name.String
		n.CategoryName = &v
	}
	return n, nil
}

func validateReminder(s string) error {
	if _, err := models.ParseReminderTime(s, time.Local); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
	}
	return nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

// withTx runs fn in a transaction and commits when it returns nil.
func (r *NoteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func checkCategory(ctx context.Context, tx *sql.Tx, id *int64) error {
	if id == nil {
		return nil
	}
	var found int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE id = ?`, *id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, *id)
	}
	return err
}

// Create validates the reminder time and inserts the note with notified=false.
func (r *NoteRepository) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	if n == nil {
		return nil, errors.New("note is nil")
	}
	if err := validateReminder(n.ReminderTime); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkCategory(ctx, tx, n.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO notes (title, content, reminder_time, notified, user_id, category_id) VALUES (?,?,?,0,?,?)`,
			n.Title, n.Content, n.ReminderTime, n.UserID, nullableID(n.CategoryID))
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("owner %d: %w", n.UserID, ErrNotFound)
			}
			return err
		}
		n.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	n.Notified = false
	return n, nil
}

// GetForOwner returns the note if it belongs to ownerID.
// A missing note yields nil, nil; another owner's note yields ErrPermissionDenied.
func (r *NoteRepository) GetForOwner(ctx context.Context, ownerID, id int64) (*models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	n, err := scanNote(r.db.QueryRowContext(ctx, `SELECT `+noteColumns+noteFrom+` WHERE n.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if n.UserID != ownerID {
		return nil, ErrPermissionDenied
	}
	return &n, nil
}

// ListByOwner returns the owner's notes in creation order with category names.
func (r *NoteRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+noteFrom+` WHERE n.user_id = ? ORDER BY n.id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// ensureOwner checks inside tx that note id exists and belongs to ownerID.
func ensureOwner(ctx context.Context, tx *sql.Tx, ownerID, id int64) error {
	var owner int64
	err := tx.QueryRowContext(ctx, `SELECT user_id FROM notes WHERE id = ?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return fmt.Errorf("note %d: %w", id, ErrPermissionDenied)
	}
	return nil
}

// Update overwrites title, content, reminder time and category of an owned note.
// The notified flag is left alone; only the reminder scheduler sets it.
func (r *NoteRepository) Update(ctx context.Context, ownerID int64, n *models.Note) error {
	if n == nil {
		return errors.New("note is nil")
	}
	if err := validateReminder(n.ReminderTime); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureOwner(ctx, tx, ownerID, n.ID); err != nil {
			return err
		}
		if err := checkCategory(ctx, tx, n.CategoryID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `UPDATE notes SET title = ?, content = ?, reminder_time = ?, category_id = ? WHERE id = ?`,
			n.Title, n.Content, n.ReminderTime, nullableID(n.CategoryID), n.ID)
		return err
	})
}

// Delete removes an owned note.
func (r *NoteRepository) Delete(ctx context.Context, ownerID, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return r.withTx(ctx, func(tx *sql.Tx) error {
		if err := ensureOwner(ctx, tx, ownerID, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
		return err
	})
}

// ListPending returns every note whose reminder has not fired yet, across all owners.
func (r *NoteRepository) ListPending(ctx context.Context) ([]models.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+noteFrom+` WHERE n.notified = 0 ORDER BY n.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkNotified sets the one-way notified flag, but only while the note still
// carries reminderTime, the time the caller judged due. It reports whether a
// row changed: false means the note is gone, already notified or was
// rescheduled in the meantime.
func (r *NoteRepository) MarkNotified(ctx context.Context, id int64, reminderTime string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET notified = 1 WHERE id = ? AND reminder_time = ? AND notified = 0`, id, reminderTime)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
