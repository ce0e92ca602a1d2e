package satellite

import (
	"sync"

	"github.com/travisdw72/onevault-api-sub007/internal/hub"
)

// lockTable hands out one mutex per identity key. Append holds the identity's
// lock from current-read through batch commit, which is what keeps the
// single-current invariant: two writers for the same identity can never
// interleave between reading the open row and replacing it.
type lockTable struct {
	mu    sync.Mutex
	locks map[hub.Key]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[hub.Key]*sync.Mutex)}
}

func (t *lockTable) lock(key hub.Key) *sync.Mutex {
	t.mu.Lock()
	m, ok := t.locks[key]
	if !ok {
		m = &sync.Mutex{}
		t.locks[key] = m
	}
	t.mu.Unlock()
	m.Lock()
	return m
}
