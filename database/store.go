package database

import (
	"database/sql"
	"errors"
)

// ErrNotFound is returned when a route, item or user the caller named does
// not exist. Callers map it to a 404.
var ErrNotFound = errors.New("not found")

// Store gives the service layer its read/write contract over the MySQL
// schema. Methods are grouped by table family across the *_store.go files.
type Store struct {
	db *sql.DB
}

// NewStore wraps an initialized connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}
