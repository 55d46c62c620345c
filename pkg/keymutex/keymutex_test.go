package keymutex

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	m := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock("contest:user")
			counter++
			m.Unlock("contest:user")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	m := New()
	m.Lock("held")
	defer m.Unlock("held")

	done := make(chan struct{})
	go func() {
		m.Lock("other")
		m.Unlock("other")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on an unrelated key blocked")
	}
}

func TestKeyedMutexUnlockUnknownKeyPanics(t *testing.T) {
	m := New()
	assert.Panics(t, func() { m.Unlock("never-locked") })
}

func TestKeyedRWMutexAllowsConcurrentReaders(t *testing.T) {
	m := NewRW()
	m.RLock("contest")
	defer m.RUnlock("contest")

	done := make(chan struct{})
	go func() {
		m.RLock("contest")
		m.RUnlock("contest")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second reader blocked")
	}
}

func TestKeyedRWMutexWriterExcludesReaders(t *testing.T) {
	m := NewRW()
	m.Lock("contest")

	acquired := make(chan struct{})
	go func() {
		m.RLock("contest")
		m.RUnlock("contest")
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("reader acquired the lock while the writer held it")
	case <-time.After(50 * time.Millisecond):
	}

	m.Unlock("contest")
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("reader never acquired the lock after writer release")
	}
}
