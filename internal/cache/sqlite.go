package cache

import (
	"fmt"

	"github.com/redlens/redlens/internal/db"
)

// SQLiteStore keeps entries in the cache_entries table.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a SQLiteStore backed by the given DB.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Get(key string, kind Kind) ([]byte, bool) {
	var payload []byte
	err := s.db.Conn().QueryRow(
		`SELECT payload FROM cache_entries WHERE key = ? AND kind = ?`, key, string(kind),
	).Scan(&payload)
	if err != nil {
		return nil, false
	}
	return payload, true
}

func (s *SQLiteStore) Put(key string, kind Kind, payload []byte) error {
	_, err := s.db.Conn().Exec(`
		INSERT INTO cache_entries (key, kind, payload, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key, kind) DO UPDATE SET
		    payload    = excluded.payload,
		    created_at = CURRENT_TIMESTAMP`,
		key, string(kind), payload,
	)
	if err != nil {
		return fmt.Errorf("cache: put %s/%s: %w", key, kind, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
