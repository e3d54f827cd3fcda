package storage

import "github.com/habitkit/habitkit/internal/storage/sqlite"

// NewSQLiteStore creates the SQLite-backed Provider rooted at path.
func NewSQLiteStore(path string) Provider {
	return sqlite.NewStore(path)
}
