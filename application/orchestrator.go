package application

import (
	"context"
	"log/slog"

	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/domain/deck"
	"github.com/luca-patrignani/drand-bataille/ledger"
	"github.com/luca-patrignani/drand-bataille/registry"
)

// Orchestrator runs the operations exposed to callers.
type Orchestrator struct {
	registry *registry.Registry
	engine   bataille.Engine
	clock    beacon.Clock
	ledger   *ledger.Ledger
	logger   *slog.Logger
}

type orchestratorOption func(Orchestrator) Orchestrator

// NewOrchestrator returns an orchestrator using the system clock, a fresh
// ledger and the default logger unless options say otherwise.
func NewOrchestrator(reg *registry.Registry, engine bataille.Engine, opts ...orchestratorOption) *Orchestrator {
	o := Orchestrator{
		registry: reg,
		engine:   engine,
		clock:    beacon.SystemClock{},
		ledger:   ledger.New(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		o = opt(o)
	}
	return &o
}

func WithClock(c beacon.Clock) orchestratorOption {
	return func(o Orchestrator) Orchestrator {
		o.clock = c
		return o
	}
}

func WithLedger(l *ledger.Ledger) orchestratorOption {
	return func(o Orchestrator) Orchestrator {
		o.ledger = l
		return o
	}
}

func WithLogger(l *slog.Logger) orchestratorOption {
	return func(o Orchestrator) Orchestrator {
		if l != nil {
			o.logger = l
		}
		return o
	}
}

// Ledger returns the ledger the orchestrator records into.
func (o *Orchestrator) Ledger() *ledger.Ledger {
	return o.ledger
}

// CreateGame opens a new game owned by caller.
func (o *Orchestrator) CreateGame(ctx context.Context, caller bataille.Identity) (uint64, error) {
	now := o.clock.Now()
	id, err := o.registry.CreateWith(ctx, caller, func(id uint64, g *bataille.Game) {
		o.record(ledger.Action{GameID: id, Kind: ledger.KindCreate, Caller: string(caller), Now: now, Card: -1})
	})
	if err != nil {
		o.logger.Error("create game failed", "caller", caller, "error", err)
		return 0, err
	}
	o.logger.Info("game created", "game", id, "caller", caller)
	return id, nil
}

// JoinGame adds caller to an open game.
func (o *Orchestrator) JoinGame(ctx context.Context, id uint64, caller bataille.Identity) error {
	now := o.clock.Now()
	err := o.registry.UpdateWith(ctx, id,
		func(g *bataille.Game) error { return g.Join(caller) },
		func(g *bataille.Game) {
			o.record(ledger.Action{GameID: id, Kind: ledger.KindJoin, Caller: string(caller), Now: now, Card: -1})
		},
	)
	if err != nil {
		o.rejected("join", id, caller, err)
		return err
	}
	o.logger.Info("player joined", "game", id, "caller", caller)
	return nil
}

// StartGame closes the roster. The first draw must be backed by the round
// the beacon publishes now.
func (o *Orchestrator) StartGame(ctx context.Context, id uint64, caller bataille.Identity) error {
	now := o.clock.Now()
	var round uint64
	err := o.registry.UpdateWith(ctx, id,
		func(g *bataille.Game) error { return o.engine.Start(g, now) },
		func(g *bataille.Game) {
			round = g.NextDrandRound()
			o.record(ledger.Action{GameID: id, Kind: ledger.KindStart, Caller: string(caller), Now: now, Round: round, Card: -1})
		},
	)
	if err != nil {
		o.rejected("start", id, caller, err)
		return err
	}
	o.logger.Info("game started", "game", id, "round", round)
	return nil
}

// Draw plays caller's turn with the beacon signature of the scheduled round.
func (o *Orchestrator) Draw(ctx context.Context, id uint64, caller bataille.Identity, sig []byte) (deck.Card, error) {
	now := o.clock.Now()
	var (
		card  deck.Card
		round uint64
	)
	err := o.registry.UpdateWith(ctx, id,
		func(g *bataille.Game) error {
			round = g.NextDrandRound()
			c, err := o.engine.Draw(ctx, g, caller, sig, now)
			card = c
			return err
		},
		func(g *bataille.Game) {
			o.record(ledger.Action{
				GameID:    id,
				Kind:      ledger.KindDraw,
				Caller:    string(caller),
				Now:       now,
				Round:     round,
				Signature: sig,
				Card:      int(card),
			})
			if g.Phase == bataille.PhaseFinished {
				o.logger.Info("game finished", "game", id, "winner", g.Winner())
			}
		},
	)
	if err != nil {
		o.rejected("draw", id, caller, err, "round", round)
		return 0, err
	}
	o.logger.Info("card drawn", "game", id, "caller", caller, "round", round, "card", int(card))
	return card, nil
}

// Winner returns the winner, or bataille.NoWinner while the game is running.
func (o *Orchestrator) Winner(ctx context.Context, id uint64) (bataille.Identity, error) {
	g, err := o.registry.Get(ctx, id)
	if err != nil {
		return bataille.NoWinner, err
	}
	return g.Winner(), nil
}

// NextDrandRound returns the round that must back the next draw.
func (o *Orchestrator) NextDrandRound(ctx context.Context, id uint64) (uint64, error) {
	g, err := o.registry.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return g.NextDrandRound(), nil
}

// Turn returns the turn pointer of the game.
func (o *Orchestrator) Turn(ctx context.Context, id uint64) (int, error) {
	g, err := o.registry.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return g.TurnIndex(), nil
}

// Game returns a copy of the game state.
func (o *Orchestrator) Game(ctx context.Context, id uint64) (*bataille.Game, error) {
	return o.registry.Get(ctx, id)
}

func (o *Orchestrator) record(a ledger.Action) {
	if _, err := o.ledger.Append(a); err != nil {
		o.logger.Error("ledger append failed", "game", a.GameID, "kind", a.Kind, "error", err)
	}
}

func (o *Orchestrator) rejected(op string, id uint64, caller bataille.Identity, err error, attrs ...any) {
	args := append([]any{"game", id, "caller", caller, "code", bataille.Code(err), "error", err}, attrs...)
	if bataille.Code(err) == "internal" {
		o.logger.Error(op+" failed", args...)
		return
	}
	o.logger.Warn(op+" rejected", args...)
}
