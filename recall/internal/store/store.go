// Package store persists browsing history, bookmarks and per-source
// watermarks in SQLite, and maintains an FTS5 index over history that is
// updated transactionally with the primary table.
package store

import (
	"database/sql"
	"sync"

	"github.com/Zetaphor/browser-recall/dbopen"
)

// Store wraps the recall database. All write transactions are serialized
// through mu so the sync engine and the enrichment worker never contend for
// the SQLite write lock; reads run unguarded.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (creating if needed) the recall database at path.
func Open(path string) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(Schema))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// New wraps an already-open database that has the recall schema applied.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only use.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }
