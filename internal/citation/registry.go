package citation

import (
	"encoding/json"
	"fmt"
)

// Entry is one citation ID and the URL it points at.
type Entry struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Registry maps citation IDs to source URLs in insertion order.
// It is filled once per run and only read afterwards.
type Registry struct {
	ids  []string
	urls map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{urls: make(map[string]string)}
}

// Add records id -> url. An ID can only be added once.
func (r *Registry) Add(id, url string) error {
	if _, ok := r.urls[id]; ok {
		return fmt.Errorf("citation: duplicate id %s", id)
	}
	r.ids = append(r.ids, id)
	r.urls[id] = url
	return nil
}

// Lookup returns the URL registered for id.
func (r *Registry) Lookup(id string) (string, bool) {
	if r == nil {
		return "", false
	}
	url, ok := r.urls[id]
	return url, ok
}

// Fallback returns the URL of the first entry added.
func (r *Registry) Fallback() (string, bool) {
	if r.Len() == 0 {
		return "", false
	}
	return r.urls[r.ids[0]], true
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.ids)
}

// Entries returns all entries in insertion order.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, Entry{ID: id, URL: r.urls[id]})
	}
	return out
}

// RegistryFromEntries builds a Registry from entries, keeping their order.
func RegistryFromEntries(entries []Entry) (*Registry, error) {
	r := NewRegistry()
	for _, e := range entries {
		if err := r.Add(e.ID, e.URL); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MarshalJSON encodes the registry as an ordered array of entries.
func (r *Registry) MarshalJSON() ([]byte, error) {
	entries := r.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON accepts the ordered array form written by MarshalJSON.
func (r *Registry) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("citation: decode registry: %w", err)
	}
	decoded, err := RegistryFromEntries(entries)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}
