// Package keymutex provides mutexes addressed by string key, used to
// serialize ledger writes per (contest, participant) while letting
// unrelated participants proceed in parallel.
package keymutex

import (
	"sync"

	"github.com/puzpuzpuz/xsync"
)

// KeyedMutex is a registry of mutexes, one per key. Mutexes are created
// on first use and kept for the life of the registry; the key space here
// (active contest participants) is small enough that no eviction is needed.
type KeyedMutex struct {
	locks *xsync.MapOf[string, *sync.Mutex]
}

// New returns an empty KeyedMutex registry.
func New() *KeyedMutex {
	return &KeyedMutex{locks: xsync.NewMapOf[*sync.Mutex]()}
}

// Lock acquires the mutex for key, creating it if needed.
func (m *KeyedMutex) Lock(key string) {
	mu, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu.Lock()
}

// Unlock releases the mutex for key. Unlock of a never-locked key panics,
// same as sync.Mutex.
func (m *KeyedMutex) Unlock(key string) {
	mu, ok := m.locks.Load(key)
	if !ok {
		panic("keymutex: unlock of unknown key " + key)
	}
	mu.Unlock()
}

// KeyedRWMutex is the read/write variant, used at contest scope: session
// recording holds the read side, lottery draws take the write side to get
// a point-in-time view of the aggregates.
type KeyedRWMutex struct {
	locks *xsync.MapOf[string, *sync.RWMutex]
}

// NewRW returns an empty KeyedRWMutex registry.
func NewRW() *KeyedRWMutex {
	return &KeyedRWMutex{locks: xsync.NewMapOf[*sync.RWMutex]()}
}

func (m *KeyedRWMutex) get(key string) *sync.RWMutex {
	mu, _ := m.locks.LoadOrStore(key, &sync.RWMutex{})
	return mu
}

// Lock acquires the write lock for key.
func (m *KeyedRWMutex) Lock(key string) { m.get(key).Lock() }

// Unlock releases the write lock for key.
func (m *KeyedRWMutex) Unlock(key string) { m.get(key).Unlock() }

// RLock acquires the read lock for key.
func (m *KeyedRWMutex) RLock(key string) { m.get(key).RLock() }

// RUnlock releases the read lock for key.
func (m *KeyedRWMutex) RUnlock(key string) { m.get(key).RUnlock() }
