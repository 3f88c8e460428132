package memory

import (
	"bytes"
	"context"
	"sync"
	"time"

	"melodybot/internal/storage"
)

type entry struct {
	value     []byte
	updatedAt time.Time
}

// Store is an in-memory storage.Store. It is not durable and exists for
// local development and tests.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns a copy of the value stored under key
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, exists := s.entries[string(key)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return bytes.Clone(e.value), nil
}

// Put stores a copy of value under key
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[string(key)] = entry{value: bytes.Clone(value), updatedAt: s.now()}
	return nil
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, string(key))
	return nil
}

// Take returns and removes the value under one write lock
func (s *Store) Take(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[string(key)]
	if !exists {
		return nil, storage.ErrNotFound
	}
	delete(s.entries, string(key))
	return e.value, nil
}

// Sweep removes keys under prefix last written before olderThan
func (s *Store) Sweep(ctx context.Context, prefix []byte, olderThan time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for key, e := range s.entries {
		if bytes.HasPrefix([]byte(key), prefix) && e.updatedAt.Before(olderThan) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored keys
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Close is a no-op
func (s *Store) Close() error {
	return nil
}
