// Package lock serialises read-check-write sequences that span several
// documents (default address selection, order transitions).
package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker acquires a named lock. The returned func releases it and is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Nop never blocks. It keeps the unlocked behaviour available for tests.
type Nop struct{}

func (Nop) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}

type keyedMutex struct {
	ch   chan struct{}
	refs int
}

// MutexLocker is an in-process Locker keyed by name, used when no Redis is
// configured. It only coordinates callers inside one process.
type MutexLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedMutex
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{locks: map[string]*keyedMutex{}}
}

func (m *MutexLocker) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	km, ok := m.locks[key]
	if !ok {
		km = &keyedMutex{ch: make(chan struct{}, 1)}
		m.locks[key] = km
	}
	km.refs++
	m.mu.Unlock()

	select {
	case km.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, km)
		return nil, errors.Join(ErrNotAcquired, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-km.ch
			m.release(key, km)
		})
	}, nil
}

func (m *MutexLocker) release(key string, km *keyedMutex) {
	m.mu.Lock()
	defer m.mu.Unlock()
	km.refs--
	if km.refs == 0 {
		delete(m.locks, key)
	}
}
