package registry

import (
	"context"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
)

// Store persists games wholesale. Implementations return bataille.ErrNoSuchGame
// for ids they never assigned, and never share a *Game with their callers.
type Store interface {
	// Append stores g under the next id and returns that id.
	Append(ctx context.Context, g *bataille.Game) (uint64, error)
	Load(ctx context.Context, id uint64) (*bataille.Game, error)
	Save(ctx context.Context, id uint64, g *bataille.Game) error
	// Len returns the number of games, which is also the next id.
	Len(ctx context.Context) (uint64, error)
}
