package service

import "sync"

// draftLocks hands out one mutex per draft ID. An entry lives only while
// some caller holds or waits for it, so IDs that never resolve to a draft
// leave nothing behind.
type draftLocks struct {
	mu    sync.Mutex
	locks map[string]*draftLock
}

type draftLock struct {
	sync.Mutex
	refs int
}

func newDraftLocks() *draftLocks {
	return &draftLocks{locks: make(map[string]*draftLock)}
}

// lock blocks until draftID is free and returns its unlock func.
func (d *draftLocks) lock(draftID string) func() {
	d.mu.Lock()
	l, ok := d.locks[draftID]
	if !ok {
		l = &draftLock{}
		d.locks[draftID] = l
	}
	l.refs++
	d.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, draftID)
		}
		d.mu.Unlock()
	}
}

func (d *draftLocks) len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.locks)
}
