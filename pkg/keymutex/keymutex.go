// Package keymutex provides per-key mutual exclusion. The registration
// engine locks on the event ID so admission decisions, waitlist promotion,
// and status/capacity edits for one event are serialized while different
// events proceed in parallel.
package keymutex

import "sync"

// KeyMutex hands out one mutex per key. Mutexes are created lazily and
// never reclaimed; the key space here is bounded by live events.
type KeyMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty KeyMutex.
func New() *KeyMutex {
	return &KeyMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, blocking until it is available.
func (k *KeyMutex) Lock(key string) {
	k.get(key).Lock()
}

// Unlock releases the mutex for key. Must follow a Lock for the same key.
func (k *KeyMutex) Unlock(key string) {
	k.get(key).Unlock()
}

func (k *KeyMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}
