package document

import (
	"fmt"
	"sync"
)

// keyedLocks serializes mutating operations on a document. The key is the
// (group, type) pair rather than the document ID so that a first upload,
// which has no ID yet, still contends with every later operation on the
// same row. Entries are never removed; the map is bounded by the number of
// (group, type) pairs ever touched.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

func lockKey(groupID int, typ Type) string {
	return fmt.Sprintf("%d:%s", groupID, typ)
}

// lock acquires the mutex for the given key, creating it on first use, and
// returns it locked.
func (kl *keyedLocks) lock(key string) *sync.Mutex {
	kl.mu.Lock()
	m, ok := kl.locks[key]
	if !ok {
		m = new(sync.Mutex)
		kl.locks[key] = m
	}
	kl.mu.Unlock()

	m.Lock()
	return m
}
