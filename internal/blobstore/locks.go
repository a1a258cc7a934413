package blobstore

import "sync"

// idLocks serializes operations on the same attachment id while letting
// operations on different ids proceed in parallel.
type idLocks struct {
	mu    sync.Mutex
	locks map[string]*idLock
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

func newIDLocks() *idLocks {
	return &idLocks{locks: make(map[string]*idLock)}
}

// lock acquires the mutex for id and returns its release function.
func (l *idLocks) lock(id string) func() {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &idLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return func() {
		lk.mu.Unlock()
		l.mu.Lock()
		lk.refs--
		if lk.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
