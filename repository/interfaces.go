package repository

import (
	"context"

	"noteminder/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetCredentials(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

// CategoryRepositoryI defines read operations on the static category set.
type CategoryRepositoryI interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
}

// NoteRepositoryI defines operations on Note entities. Mutations take the
// owner id and reject notes belonging to somebody else.
type NoteRepositoryI interface {
	Create(ctx context.Context, n *models.Note) (*models.Note, error)
	GetForOwner(ctx context.Context, ownerID, id int64) (*models.Note, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Note, error)
	Update(ctx context.Context, ownerID int64, n *models.Note) error
	Delete(ctx context.Context, ownerID, id int64) error
	ListPending(ctx context.Context) ([]models.Note, error)
	MarkNotified(ctx context.Context, id int64, reminderTime string) (bool, error)
}

var (
	_ UserRepositoryI     = (*UserRepository)(nil)
	_ CategoryRepositoryI = (*CategoryRepository)(nil)
	_ NoteRepositoryI     = (*NoteRepository)(nil)
)
