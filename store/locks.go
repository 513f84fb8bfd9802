package store

import (
	"sync"
	"time"
)

// lockTable hands out one writer slot per document id. Acquisition
// waits up to the configured timeout, then fails with ErrBusy.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

func newLockTable(wait time.Duration) *lockTable {
	return &lockTable{
		slots: make(map[string]chan struct{}),
		wait:  wait,
	}
}

func (t *lockTable) slot(id string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	slot, ok := t.slots[id]
	if !ok {
		slot = make(chan struct{}, 1)
		t.slots[id] = slot
	}
	return slot
}

// acquire takes the writer slot for id or returns ErrBusy after the
// bounded wait.
func (t *lockTable) acquire(id string) error {
	slot := t.slot(id)
	select {
	case slot <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(t.wait)
	defer timer.Stop()
	select {
	case slot <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrBusy
	}
}

func (t *lockTable) release(id string) {
	select {
	case <-t.slot(id):
	default:
		// releasing an unheld lock is a programming error; make it a no-op
	}
}
