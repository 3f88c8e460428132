package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"melodybot/internal/storage"

	"github.com/redis/go-redis/v9"
)

// Options holds Redis connection settings
type Options struct {
	Addr     string
	Password string
	DB       int
}

// Store implements storage.Store using Redis strings.
// Durability follows the server's persistence settings; run Redis with
// appendonly yes and appendfsync always for crash-safe writes.
type Store struct {
	client *redis.Client
}

// NewStore connects to Redis and verifies the connection
func NewStore(ctx context.Context, opts Options) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewStoreWithClient wraps an existing client
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	value, err := s.client.Get(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}
	return value, nil
}

// Put stores value under key without expiration
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := s.client.Set(ctx, string(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// Delete removes key
func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := s.client.Del(ctx, string(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// Take uses GETDEL (Redis >= 6.2), which Redis executes atomically
func (s *Store) Take(ctx context.Context, key []byte) ([]byte, error) {
	value, err := s.client.GetDel(ctx, string(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to take key: %w", err)
	}
	return value, nil
}

// Ping checks the server connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the client
func (s *Store) Close() error {
	return s.client.Close()
}
