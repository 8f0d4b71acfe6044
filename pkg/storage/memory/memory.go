// Package memory implements an in-memory Store. It backs tests and
// ephemeral sessions where nothing should touch disk.
package memory

import (
	"encoding/json"
	"sync"
)

// Store keeps serialized values in a map guarded by a mutex. Values
// round-trip through JSON so it behaves exactly like a durable backend,
// including the coercion applied by custom unmarshalers.
type Store struct {
	mu      sync.RWMutex
	values  map[string][]byte
	failing bool
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// SetFailing makes every subsequent Save report failure. Tests use it
// to exercise the write-failed paths.
func (s *Store) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Save serializes v and stores it under key.
func (s *Store) Save(key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return false
	}
	s.values[key] = data
	return true
}

// Load decodes the value stored under key into dst.
func (s *Store) Load(key string, dst any) bool {
	s.mu.RLock()
	data, ok := s.values[key]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// Keys returns the stored keys.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for key := range s.values {
		keys = append(keys, key)
	}
	return keys
}

// SetRaw stores pre-serialized text under key, bypassing Save's JSON
// encoding. Tests use it to plant malformed documents.
func (s *Store) SetRaw(key, raw string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = []byte(raw)
}
