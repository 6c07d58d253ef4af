// Package keymutex provides a lazily-populated, mutex-guarded map of
// lightweight per-key locks: exactly the "(race_id, timing_point)
// -> lock" shape the concurrency model calls for, generalized so the
// orchestrator can reuse it for per-event generation locks too.
package keymutex

import "sync"

type Map struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *Map {
	return &Map{locks: map[string]*sync.Mutex{}}
}

// Lock acquires the lock for key, creating it on first use, and returns
// the function that releases it. The map's own mutex is held only long
// enough to find-or-create the per-key lock, never across the caller's
// critical section.
func (m *Map) Lock(key string) (unlock func()) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}
