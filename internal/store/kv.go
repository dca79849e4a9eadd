package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is the durable key-value contract the session persists settings to.
// All callers treat it as best-effort: failures are logged and swallowed,
// never surfaced to the user.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Memory is a concurrency-safe in-memory KV, used in tests and as the
// ephemeral backend.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory creates an empty in-memory KV.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}
