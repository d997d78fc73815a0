// Package memory provides a generic thread-safe in-memory key-value store
// that the repository adapters build on. Values are copied on the way in and
// on the way out, so callers may freely mutate what they stored or fetched
// without racing other readers.
package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when the requested key does not exist.
var ErrNotFound = errors.New("not found")

// ErrExists is returned by Insert when the key is already taken.
var ErrExists = errors.New("already exists")

// Store is a generic thread-safe in-memory key-value store. Keys are derived
// from the stored values so callers cannot file a value under the wrong key;
// copyFunc isolates stored values from caller mutation.
type Store[V any] struct {
	mu       sync.RWMutex
	data     map[string]V
	keyFunc  func(V) string
	copyFunc func(V) V
}

// New creates a Store with a key extractor and a deep-copy function.
func New[V any](keyFunc func(V) string, copyFunc func(V) V) *Store[V] {
	return &Store[V]{
		data:     make(map[string]V),
		keyFunc:  keyFunc,
		copyFunc: copyFunc,
	}
}

// Insert stores a copy of v under its derived key. Returns ErrExists when
// the key is already present.
func (s *Store[V]) Insert(_ context.Context, v V) error {
	key := s.keyFunc(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.data[key]; taken {
		return ErrExists
	}
	s.data[key] = s.copyFunc(v)
	return nil
}

// Replace stores a copy of v over an existing entry. Returns ErrNotFound
// when the key is absent.
func (s *Store[V]) Replace(_ context.Context, v V) error {
	key := s.keyFunc(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	s.data[key] = s.copyFunc(v)
	return nil
}

// Get returns a copy of the value for key, or ErrNotFound if absent.
func (s *Store[V]) Get(_ context.Context, key string) (V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		var zero V
		return zero, ErrNotFound
	}
	return s.copyFunc(v), nil
}

// Delete removes the value for key. Returns ErrNotFound if absent.
func (s *Store[V]) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return ErrNotFound
	}
	delete(s.data, key)
	return nil
}

// All returns copies of all stored values in arbitrary order.
func (s *Store[V]) All(_ context.Context) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.data))
	for _, v := range s.data {
		out = append(out, s.copyFunc(v))
	}
	return out, nil
}
