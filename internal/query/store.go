package query

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type storeEntry[V any] struct {
	value   V
	expires time.Time
}

// Store keeps values addressable by a random ID for a limited time. It parks
// requests that outlive the HTTP exchange that started them.
type Store[V any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]storeEntry[V]
}

// NewStore creates a Store whose entries expire ttl after Put.
func NewStore[V any](ttl time.Duration) *Store[V] {
	return &Store[V]{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]storeEntry[V]),
	}
}

// Put stores v and returns its ID. Expired entries are swept on the way.
func (s *Store[V]) Put(v V) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, id)
		}
	}

	id := uuid.NewString()
	s.entries[id] = storeEntry[V]{value: v, expires: now.Add(s.ttl)}
	return id
}

// Get returns the value stored under id, if present and not expired.
func (s *Store[V]) Get(id string) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok || !s.now().Before(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Delete removes id.
func (s *Store[V]) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len counts stored entries, including expired ones not yet swept.
func (s *Store[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
