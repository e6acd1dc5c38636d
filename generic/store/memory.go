// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/deposit-engine/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	runs    map[string]generic.Run
	entries map[string][]generic.Entry
	order   []string
}

func NewMemory() *Memory {
	return &Memory{
		runs:    make(map[string]generic.Run),
		entries: make(map[string][]generic.Entry),
	}
}

// SaveRun stores the run and a private copy of its entries. Append-only.
func (m *Memory) SaveRun(_ context.Context, run generic.Run, entries []generic.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.runs[run.ID]; exists {
		return generic.ErrDuplicateRun
	}

	cp := make([]generic.Entry, len(entries))
	copy(cp, entries)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].ID < cp[j].ID })

	m.runs[run.ID] = run
	m.entries[run.ID] = cp
	m.order = append(m.order, run.ID)
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (*generic.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	run, ok := m.runs[id]
	if !ok {
		return nil, generic.ErrRunNotFound
	}
	return &run, nil
}

// ListRuns returns runs most recent first (reverse save order).
func (m *Memory) ListRuns(_ context.Context) ([]generic.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]generic.Run, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		result = append(result, m.runs[m.order[i]])
	}
	return result, nil
}

func (m *Memory) LoadEntries(_ context.Context, runID string) ([]generic.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries, ok := m.entries[runID]
	if !ok {
		return nil, generic.ErrRunNotFound
	}
	result := make([]generic.Entry, len(entries))
	copy(result, entries)
	return result, nil
}

var _ generic.Store = (*Memory)(nil)
