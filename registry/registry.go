package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
)

// Registry is the root of ownership of every game.
type Registry struct {
	store    Store
	locks    sync.Map // uint64 -> *sync.Mutex
	createMu sync.Mutex
}

func New(store Store) *Registry {
	return &Registry{store: store}
}

// Create adds an open game owned by owner and returns its id.
func (r *Registry) Create(ctx context.Context, owner bataille.Identity) (uint64, error) {
	return r.CreateWith(ctx, owner, nil)
}

// CreateWith is Create with a hook run under the lock of the new game, before
// any other call can reach it.
func (r *Registry) CreateWith(ctx context.Context, owner bataille.Identity, committed func(id uint64, g *bataille.Game)) (uint64, error) {
	r.createMu.Lock()
	defer r.createMu.Unlock()

	next, err := r.store.Len(ctx)
	if err != nil {
		return 0, err
	}
	mu := r.lock(next)
	mu.Lock()
	defer mu.Unlock()

	g := bataille.NewGame(owner)
	id, err := r.store.Append(ctx, g)
	if err != nil {
		return 0, err
	}
	if id != next {
		return 0, fmt.Errorf("store assigned id %d, expected %d", id, next)
	}
	if committed != nil {
		committed(id, g)
	}
	return id, nil
}

// Get returns a copy of the game. Changing it has no effect on the registry.
func (r *Registry) Get(ctx context.Context, id uint64) (*bataille.Game, error) {
	return r.store.Load(ctx, id)
}

// Len returns the number of games created so far.
func (r *Registry) Len(ctx context.Context) (uint64, error) {
	return r.store.Len(ctx)
}

// Update runs fn on a copy of the game and saves the copy if fn succeeds.
// Calls on the same id are serialized for the whole duration of fn.
func (r *Registry) Update(ctx context.Context, id uint64, fn func(*bataille.Game) error) error {
	return r.UpdateWith(ctx, id, fn, nil)
}

// UpdateWith is Update with a hook run after the save, still under the game
// lock, so that hooks of one game observe its commits in order.
func (r *Registry) UpdateWith(ctx context.Context, id uint64, fn func(*bataille.Game) error, committed func(*bataille.Game)) error {
	mu := r.lock(id)
	mu.Lock()
	defer mu.Unlock()

	g, err := r.store.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	if err := r.store.Save(ctx, id, g); err != nil {
		return err
	}
	if committed != nil {
		committed(g)
	}
	return nil
}

// View runs fn on a copy of the game while holding its lock, so that fn sees
// the game between two updates, along with whatever their hooks recorded.
func (r *Registry) View(ctx context.Context, id uint64, fn func(*bataille.Game)) error {
	mu := r.lock(id)
	mu.Lock()
	defer mu.Unlock()

	g, err := r.store.Load(ctx, id)
	if err != nil {
		return err
	}
	fn(g)
	return nil
}

func (r *Registry) lock(id uint64) *sync.Mutex {
	mu, _ := r.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
