// Package storage provides persistence backends for the session store: an
// in-memory map for tests and ephemeral processes, a Redis adapter, and a
// bun/SQLite adapter for durable local state.
package storage

import (
	"context"
	"sync"

	session "github.com/kentecode/go-session"
)

// Memory is a map-backed Storage, safe for concurrent use
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ session.Storage = (*Memory)(nil)

// NewMemory returns an empty in-memory storage
func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return nil, session.ErrNoRecord
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.data[key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}
