// Package storage persists client state in a key-value backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhuiying-client/internal/config"
)

// ErrNotFound is returned when a key has no value
var ErrNotFound = errors.New("storage: key not found")

// KeyValueStore is the minimal persistence contract shared by all backends
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

// Open returns the backend selected by cfg.Backend
func Open(ctx context.Context, cfg *config.StorageConfig) (KeyValueStore, error) {
	switch cfg.Backend {
	case config.StorageMemory:
		return NewMemoryStore(), nil
	case config.StorageRedis:
		rs, err := NewRedisStore(ctx, &cfg.Redis, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.StoragePostgres:
		ps, err := NewPostgresStore(ctx, &cfg.Postgres, cfg.KeyPrefix)
		if err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
