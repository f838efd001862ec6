package models

// Category tags notes. The set is seeded on first run and static afterwards.
type Category struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
