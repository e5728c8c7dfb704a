package prefs

import (
	"sync"

	"asset-registry/core/utils"
)

// Memory is an in-process preference store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]any)}
}

// Bool returns the boolean stored at key, false if absent.
func (m *Memory) Bool(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return utils.ToBool(m.values[key])
}

// SetBool stores a boolean.
func (m *Memory) SetBool(key string, value bool) {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
}

func (m *Memory) has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.values[key]
	return ok
}

// snapshot copies the values for serialization.
func (m *Memory) snapshot() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]any, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// replace swaps in values loaded from elsewhere.
func (m *Memory) replace(values map[string]any) {
	m.mu.Lock()
	m.values = values
	m.mu.Unlock()
}
