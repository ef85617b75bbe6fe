package repository

import (
	"errors"
	"log/slog"
)

// ErrFeatureNotFound is returned when an update or delete matches no row.
var ErrFeatureNotFound = errors.New("feature not found")

// Repository stores sector features in postgres. It backs layer.Store.
type Repository struct {
	db  Database
	log *slog.Logger
}

// NewRepository creates a new instance of Repository with the provided Database.
// It returns a pointer to the newly created Repository.
func NewRepository(db Database, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}
