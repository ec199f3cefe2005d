// Package keylock provides mutual exclusion scoped to a string key.
//
// Holders of different keys never contend. Entries are reference counted and
// removed once the last holder or waiter for a key is gone, so the table does
// not grow with the number of distinct keys ever seen.
package keylock

import (
	"context"
	"sync"
)

// Table is a set of per-key locks. The zero value is not usable, call New.
type Table struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	sem  chan struct{}
	refs int
}

// New returns an empty Table.
func New() *Table {
	return &Table{locks: make(map[string]*entry)}
}

// Lock blocks until key is held or ctx is done. The returned unlock func is
// idempotent.
func (t *Table) Lock(ctx context.Context, key string) (func(), error) {
	t.mu.Lock()
	e, ok := t.locks[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		t.locks[key] = e
	}
	e.refs++
	t.mu.Unlock()

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		t.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			t.release(key, e)
		})
	}, nil
}

// Len returns the number of keys currently held or waited on.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

func (t *Table) release(key string, e *entry) {
	t.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(t.locks, key)
	}
	t.mu.Unlock()
}
