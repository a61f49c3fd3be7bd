package punishment

import (
	"fmt"
	"sync"
)

// targetLocks serializes ledger mutations per (chat, user) key, so that a
// read-count-then-act sequence for one target runs as a single unit.
// Operations on different targets never wait on each other.
type targetLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// acquire locks the target's mutex and returns the unlock function.
func (t *targetLocks) acquire(chatID, userID int64) func() {
	key := fmt.Sprintf("%d/%d", chatID, userID)
	t.mu.Lock()
	if t.locks == nil {
		t.locks = make(map[string]*sync.Mutex)
	}
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()
	l.Lock()
	return l.Unlock
}
