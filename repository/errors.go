package repository

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

var (
	ErrDuplicateUser    = errors.New("username already exists")
	ErrInvalidTimestamp = errors.New("invalid reminder time, expected YYYY-MM-DD HH:MM")
	ErrNotFound         = errors.New("not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrUnknownCategory  = errors.New("unknown category")
)

func isUniqueViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintUnique || se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
