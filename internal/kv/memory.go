package kv

import (
	"context"
	"sync"
	"time"
)

// Memory keeps values in process memory. Nothing survives a restart;
// used by tests and by the "memory" backend for throwaway sessions.
type Memory struct {
	mu        sync.RWMutex
	values    map[string][]byte
	lastWrite time.Time
}

// NewMemory creates an empty in-memory storage.
func NewMemory() *Memory {
	return &Memory{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the stored value
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Set stores a copy of value
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = append([]byte(nil), value...)
	m.lastWrite = time.Now()
	return nil
}

// LastWrite returns the time of the last successful Set.
func (m *Memory) LastWrite() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.lastWrite
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Name() string               { return "memory" }
func (m *Memory) Close() error               { return nil }
