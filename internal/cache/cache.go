// Package cache stores fetch and processing artifacts under content-derived
// keys so repeated runs over the same input skip the expensive stages.
package cache

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/redlens/redlens/internal/config"
	"github.com/redlens/redlens/internal/db"
)

// Kind separates the artifacts stored under the same key.
type Kind string

const (
	KindRaw       Kind = "raw"
	KindProcessed Kind = "processed"
)

// Store is a key/kind addressed blob store. A Get that cannot produce the
// stored bytes, for whatever reason, reports a miss.
type Store interface {
	Get(key string, kind Kind) ([]byte, bool)
	Put(key string, kind Kind, payload []byte) error
	Close() error
}

// GetJSON loads the entry into v. An entry that does not decode is a miss.
func GetJSON(s Store, key string, kind Kind, v any) bool {
	payload, ok := s.Get(key, kind)
	if !ok {
		return false
	}
	return json.Unmarshal(payload, v) == nil
}

// PutJSON encodes v and stores it, replacing any previous entry.
func PutJSON(s Store, key string, kind Kind, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %s/%s: %w", key, kind, err)
	}
	return s.Put(key, kind, payload)
}

// Open returns the backend selected by cfg.
func Open(cfg config.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		database, err := db.Open(filepath.Join(cfg.Dir, db.DefaultFilename))
		if err != nil {
			return nil, fmt.Errorf("cache: open: %w", err)
		}
		return NewSQLiteStore(database), nil
	case "file":
		return NewFileStore(cfg.Dir), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("cache: unknown backend %q (use sqlite, file or memory)", cfg.Backend)
	}
}
