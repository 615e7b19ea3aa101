// Package sqlstore implements the task and user repositories on gorm.
package sqlstore

import (
	"context"
	"time"

	"todo-api/internal/database"

	"gorm.io/gorm"
)

// Store is the relational repository for tasks and users
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Ping reports whether the database answers
func (s *Store) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}
