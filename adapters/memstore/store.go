// Package memstore is the in-memory indexed table behind the registry: a keyed map with a filtered
// linear scan, which is all the registry needs at the scale of one gateway.
package memstore

import (
	"sort"
	"sync"

	"mycenter/interfaces"
)

// Store implements interfaces.Store with a map guarded by an RWMutex. Results of FindList and FindAll
// are ordered by key so listings are stable.
type Store[T any] struct {
	mu      sync.RWMutex
	records map[string]T
}

var _ interfaces.Store[int] = (*Store[int])(nil)

// New creates an empty table.
func New[T any]() *Store[T] {
	return &Store[T]{records: make(map[string]T)}
}

// Insert stores record under key, replacing any previous record.
func (s *Store[T]) Insert(key string, record T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
}

// Remove deletes key and reports whether it existed.
func (s *Store[T]) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[key]
	delete(s.records, key)
	return ok
}

// FindByID returns the record under key.
func (s *Store[T]) FindByID(key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	return rec, ok
}

// FindList returns the records matching match, ordered by key. A nil match returns everything.
func (s *Store[T]) FindList(match func(T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		rec := s.records[k]
		if match == nil || match(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FindAll returns every record ordered by key.
func (s *Store[T]) FindAll() []T {
	return s.FindList(nil)
}
