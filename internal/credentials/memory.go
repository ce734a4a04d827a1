package credentials

import "sync"

// MemoryStore is a mutex-guarded in-process store. It is the default for the
// client library and for tests.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[string]string)}
}

func (m *MemoryStore) Get(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.slots[name]
	return v, ok
}

func (m *MemoryStore) Set(name, value string, _ Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[name] = value
}

func (m *MemoryStore) Clear(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.slots, name)
}

func (m *MemoryStore) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, name := range KnownSlots {
		delete(m.slots, name)
	}
}
