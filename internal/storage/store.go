package storage

import (
	"github.com/jmoiron/sqlx"
)

// Store provides access to all persisted entities over a single Postgres pool.
type Store struct {
	db *sqlx.DB
}

// New wraps the provided database pool.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}
