package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps entities in process memory.
type MemoryBackend struct {
	mu       sync.RWMutex
	entities map[string]map[string][]byte
	state    map[string]uint64
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entities: make(map[string]map[string][]byte),
		state:    make(map[string]uint64),
	}
}

func (m *MemoryBackend) Load(_ context.Context, kind, id string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.entities[kind][id]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), data...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, kind, id string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.entities[kind]
	if !ok {
		byID = make(map[string][]byte)
		m.entities[kind] = byID
	}
	byID[id] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryBackend) Remove(_ context.Context, kind, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entities[kind], id)
	return nil
}

func (m *MemoryBackend) List(_ context.Context, kind string) ([][]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.entities[kind]))
	for id := range m.entities[kind] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([][]byte, 0, len(ids))
	for _, id := range ids {
		out = append(out, append([]byte(nil), m.entities[kind][id]...))
	}
	return out, nil
}

func (m *MemoryBackend) LoadState(_ context.Context, name string) (uint64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.state[name]
	return value, ok, nil
}

func (m *MemoryBackend) SaveState(_ context.Context, name string, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state[name] = value
	return nil
}

func (m *MemoryBackend) Close() error {
	return nil
}
