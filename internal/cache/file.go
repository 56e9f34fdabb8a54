package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var safeKey = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// FileStore keeps one {key}_{kind}.json file per entry in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on the first Put.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string, kind Kind) (string, bool) {
	if !safeKey.MatchString(key) || !safeKey.MatchString(string(kind)) {
		return "", false
	}
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", key, kind)), true
}

func (s *FileStore) Get(key string, kind Kind) ([]byte, bool) {
	p, ok := s.path(key, kind)
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Put writes the entry through a temp file so readers never see a partial
// payload.
func (s *FileStore) Put(key string, kind Kind, payload []byte) error {
	p, ok := s.path(key, kind)
	if !ok {
		return fmt.Errorf("cache: key %q is not a safe filename", key)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cache: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("cache: create temp: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: write %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("cache: rename %s: %w", p, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
