package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	games []*bataille.Game
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(ctx context.Context, g *bataille.Game) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games = append(m.games, g.Clone())
	return uint64(len(m.games) - 1), nil
}

func (m *Memory) Load(ctx context.Context, id uint64) (*bataille.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id >= uint64(len(m.games)) {
		return nil, fmt.Errorf("%w: %d", bataille.ErrNoSuchGame, id)
	}
	return m.games[id].Clone(), nil
}

func (m *Memory) Save(ctx context.Context, id uint64, g *bataille.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id >= uint64(len(m.games)) {
		return fmt.Errorf("%w: %d", bataille.ErrNoSuchGame, id)
	}
	m.games[id] = g.Clone()
	return nil
}

func (m *Memory) Len(ctx context.Context) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return uint64(len(m.games)), nil
}
