package kvstore

import (
	"context"
	"sync"
)

// Memory keeps values in process. Data is lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
	seq  map[string]int64
}

func NewMemory() *Memory {
	return &Memory{data: map[string]string{}, seq: map[string]int64{}}
}

func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Next(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq[name]++
	return m.seq[name], nil
}

func (m *Memory) Ping(context.Context) error { return nil }
