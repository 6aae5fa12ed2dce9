package locks

import (
	"sync"

	"github.com/google/uuid"
)

// Keyed provides per-entity mutual exclusion for read-check-write status
// transitions. Two concurrent transitions on the same entity serialize here,
// so at most one of them observes the status precondition as satisfied.
type Keyed struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyed creates an empty keyed lock set.
func NewKeyed() *Keyed {
	return &Keyed{locks: make(map[uuid.UUID]*entry)}
}

// Lock acquires the lock for the given entity id.
func (k *Keyed) Lock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &entry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the lock for the given entity id, dropping the entry once
// no other goroutine is waiting on it.
func (k *Keyed) Unlock(id uuid.UUID) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.locks, id)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
