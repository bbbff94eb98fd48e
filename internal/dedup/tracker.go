package dedup

import "sync"

// Tracker remembers which article identifiers were already published.
type Tracker interface {
	Seen(id string) bool
	Record(id string)
}

// Memory is a process-lifetime Tracker. Entries never expire and are lost on restart.
type Memory struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

// NewMemory returns an empty in-memory tracker.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

func (m *Memory) Seen(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[id]
	return ok
}

func (m *Memory) Record(id string) {
	m.mu.Lock()
	m.ids[id] = struct{}{}
	m.mu.Unlock()
}

// Len returns the number of recorded identifiers.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}
