package store

import (
	"context"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/passcode/internal/passcode/entity"
	"github.com/shandysiswandi/passcode/internal/pkg/goerror"
	"github.com/shandysiswandi/passcode/internal/pkg/keylock"
)

// Memory is a process-local store. Its records do not survive a restart.
type Memory struct {
	mu      sync.RWMutex
	records map[string]entity.Record
	locks   *keylock.Table
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]entity.Record),
		locks:   keylock.New(),
	}
}

func (m *Memory) Lock(ctx context.Context, identifier string) (func(), error) {
	return m.locks.Lock(ctx, identifier)
}

func (m *Memory) Put(_ context.Context, rec entity.Record) error {
	m.mu.Lock()
	m.records[rec.Identifier] = rec
	m.mu.Unlock()
	return nil
}

func (m *Memory) Get(_ context.Context, identifier string) (*entity.Record, error) {
	m.mu.RLock()
	rec, ok := m.records[identifier]
	m.mu.RUnlock()

	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) Delete(_ context.Context, identifier string) error {
	m.mu.Lock()
	delete(m.records, identifier)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Sweep(ctx context.Context, now time.Time) (int, error) {
	m.mu.RLock()
	expired := lo.Keys(lo.PickBy(m.records, func(_ string, rec entity.Record) bool {
		return rec.ExpiresAt.Before(now)
	}))
	m.mu.RUnlock()

	n := 0
	for _, id := range expired {
		unlock, err := m.locks.Lock(ctx, id)
		if err != nil {
			return n, err
		}

		m.mu.Lock()
		if rec, ok := m.records[id]; ok && rec.ExpiresAt.Before(now) {
			delete(m.records, id)
			n++
		}
		m.mu.Unlock()

		unlock()
	}

	return n, nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
