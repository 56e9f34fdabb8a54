package cache

import "sync"

type memKey struct {
	key  string
	kind Kind
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[memKey][]byte
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[memKey][]byte)}
}

func (s *MemoryStore) Get(key string, kind Kind) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	payload, ok := s.entries[memKey{key, kind}]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), payload...), true
}

func (s *MemoryStore) Put(key string, kind Kind, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memKey{key, kind}] = append([]byte(nil), payload...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }
