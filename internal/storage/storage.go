package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get and Take when the key is absent
var ErrNotFound = errors.New("storage: key not found")

// Store is a durable byte-oriented key-value store.
// Implementations must be safe for concurrent use and must not retry
// internally; retry policy belongs to callers.
type Store interface {
	// Get returns the value stored under key
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Put stores value under key, replacing any previous value.
	// The write is durable once Put returns nil.
	Put(ctx context.Context, key, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Take returns the value stored under key and removes it as one atomic
	// operation. Concurrent Takes of the same key observe the value at most once.
	Take(ctx context.Context, key []byte) ([]byte, error)

	Close() error
}

// Pinger is implemented by stores that can report their availability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sweeper is implemented by stores that track modification time and can
// drop keys under prefix that were last written before olderThan
type Sweeper interface {
	Sweep(ctx context.Context, prefix []byte, olderThan time.Time) (int64, error)
}

// PrefixEnd returns the smallest key greater than every key starting with
// prefix, or nil if there is none (prefix is empty or all 0xff)
func PrefixEnd(prefix []byte) []byte {
	end := make([]byte, len(prefix))
	copy(end, prefix)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] < 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
