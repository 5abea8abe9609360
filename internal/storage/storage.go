// Package storage opens the SQLite database that holds probe run history.
package storage

import (
	"database/sql"
)

// Config holds storage configuration
type Config struct {
	// Path is the database file path (default: .cache/todoprobe.db)
	Path string
}

// DefaultPath is used when Config.Path is empty
const DefaultPath = ".cache/todoprobe.db"

// Storage wraps a database connection.
// Implementations must be safe for concurrent use.
type Storage interface {
	// DB returns the underlying connection
	DB() *sql.DB

	// Path returns the database file path
	Path() string

	// Close releases all resources held by the storage.
	Close() error
}

// New opens the storage described by cfg
func New(cfg Config) (Storage, error) {
	return NewSQLite(cfg)
}
