package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/sachgits/boardgame.io/internal/game"
)

// Memory is an in-process Storage for tests, demos, and single-node
// deployments that do not need durability.
type Memory struct {
	mu       sync.RWMutex
	states   map[string]game.State
	metadata map[string]Metadata
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		states:   make(map[string]game.State),
		metadata: make(map[string]Metadata),
	}
}

// SetState stores the state for gameID.
func (m *Memory) SetState(_ context.Context, gameID string, state game.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[gameID] = state
	return nil
}

// GetState loads the state for gameID.
func (m *Memory) GetState(_ context.Context, gameID string) (game.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[gameID]
	if !ok {
		return game.State{}, ErrNotFound
	}
	return state, nil
}

// Has reports whether gameID exists.
func (m *Memory) Has(_ context.Context, gameID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.states[gameID]
	return ok, nil
}

// SetMetadata stores metadata for gameID.
func (m *Memory) SetMetadata(_ context.Context, gameID string, md Metadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metadata[gameID] = md
	return nil
}

// GetMetadata loads metadata for gameID.
func (m *Memory) GetMetadata(_ context.Context, gameID string) (Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	md, ok := m.metadata[gameID]
	if !ok {
		return Metadata{}, ErrNotFound
	}
	return md, nil
}

// ListGames returns stored game ids filtered by game name.
func (m *Memory) ListGames(_ context.Context, gameName string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []string
	for id := range m.states {
		if gameName == "" || m.metadata[id].GameName == gameName {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }
