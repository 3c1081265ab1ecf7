package store

import (
	"context"
	"sync"

	"github.com/latticewire/peerdag/pkg/patch"
)

// Memory is an in-process ObjectStore backed by plain maps. It exists for
// tests and for peers that do not need durability across restarts; it
// implements the exact same contract as sqlstore.Store.
type Memory struct {
	mu         sync.Mutex
	integrated map[patch.ID]patch.Patch
	hasChild   map[patch.ID]bool
	stash      map[patch.ID]patch.Patch
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		integrated: make(map[patch.ID]patch.Patch),
		hasChild:   make(map[patch.ID]bool),
		stash:      make(map[patch.ID]patch.Patch),
	}
}

func (m *Memory) Heads(_ context.Context) ([]patch.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	heads := make([]patch.ID, 0, len(m.integrated))
	for id := range m.integrated {
		if !m.hasChild[id] {
			heads = append(heads, id)
		}
	}
	return heads, nil
}

func (m *Memory) Patches(_ context.Context, ids []patch.ID) ([]patch.Patch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]patch.Patch, 0, len(ids))
	for _, id := range ids {
		if p, ok := m.integrated[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *Memory) IsIntegrated(_ context.Context, id patch.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.integrated[id]
	return ok, nil
}

func (m *Memory) Contains(_ context.Context, id patch.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.integrated[id]; ok {
		return true, nil
	}
	_, ok := m.stash[id]
	return ok, nil
}

func (m *Memory) Commit(_ context.Context, p patch.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.integrated[p.ID()]; ok {
		return ErrDuplicate
	}
	m.integrated[p.ID()] = p
	for _, d := range p.Deps() {
		m.hasChild[d] = true
	}
	return nil
}

func (m *Memory) Stash(_ context.Context, p patch.Patch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stash[p.ID()] = p
	return nil
}

func (m *Memory) Unstash(_ context.Context) ([]patch.Patch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]patch.Patch, 0, len(m.stash))
	for _, p := range m.stash {
		out = append(out, p)
	}
	m.stash = make(map[patch.ID]patch.Patch)
	return out, nil
}
