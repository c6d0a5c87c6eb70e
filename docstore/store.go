// Package docstore persists whole JSON documents under string keys.
//
// The scheduler treats durable storage as a key-value persisted document:
// the full job collection is written under one key after every mutation and
// read back once at startup, settings under another. This store implements
// that boundary over SQLite.
package docstore

import (
	"database/sql"
	"time"

	"github.com/loopwork/actiond/errors"
)

// Store reads and writes JSON documents in the documents table
type Store struct {
	db *sql.DB
}

// NewStore creates a document store on top of an open database
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Load returns the document stored under key, or (nil, nil) if absent.
func (s *Store) Load(key string) ([]byte, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM documents WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load document %q", key)
	}
	return []byte(value), nil
}

// Save upserts the document stored under key.
func (s *Store) Save(key string, data []byte) error {
	query := `
		INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.Exec(query, key, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to save document %q", key), errors.ErrPersistence)
	}
	return nil
}

// Delete removes the document stored under key. Missing keys are not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM documents WHERE key = ?", key); err != nil {
		return errors.Mark(errors.Wrapf(err, "failed to delete document %q", key), errors.ErrPersistence)
	}
	return nil
}
