package bataille

import (
	"context"
	"fmt"

	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/domain/deck"
	"github.com/luca-patrignani/drand-bataille/rng"
)

// Engine runs the beacon-gated transitions of a game.
type Engine struct {
	Verifier beacon.Verifier
	Schedule beacon.Schedule
	Rules    Rules
}

// Start moves g to Started. The first draw must be backed by the round the
// beacon publishes at now.
func (e Engine) Start(g *Game, now uint64) error {
	return g.Start(e.Schedule.ExpectedRound(now))
}

// Draw plays the card seeded by sig for caller. The signature is checked
// against the scheduled round before anything is changed: on any error g is
// left exactly as it was.
func (e Engine) Draw(ctx context.Context, g *Game, caller Identity, sig []byte, now uint64) (deck.Card, error) {
	idx, err := g.CheckDraw(caller)
	if err != nil {
		return 0, err
	}
	round := g.NextRound
	ok, err := e.Verifier.Verify(ctx, round, sig)
	if err != nil {
		return 0, fmt.Errorf("%w: round %d: %w", ErrVerificationFailed, round, err)
	}
	if !ok {
		return 0, fmt.Errorf("%w: round %d", ErrVerificationFailed, round)
	}

	card, err := g.take(idx, rng.Seed(sig))
	if err != nil {
		return 0, err
	}
	g.reveal(idx, card, e.Rules)
	g.NextRound = e.Schedule.Next(now, round)
	return card, nil
}
