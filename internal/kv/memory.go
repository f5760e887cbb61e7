package kv

import (
	"context"
	"sort"
	"sync"
)

// Memory is an in-process Storage. The zero value is not usable; call NewMemory.
type Memory struct {
	mu    sync.RWMutex
	items map[string]string
	fail  error
}

func NewMemory() *Memory {
	return &Memory{items: map[string]string{}}
}

// FailWith makes every subsequent call return err. Pass nil to recover.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

func (m *Memory) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.fail != nil {
		return "", false, m.fail
	}
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *Memory) SetItem(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.items[key] = value
	return nil
}

func (m *Memory) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	delete(m.items, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
