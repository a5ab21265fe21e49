package bataille

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/domain/deck"
)

var testSchedule = beacon.Schedule{Genesis: 1000, Period: 3}

func acceptAll() beacon.Verifier {
	return beacon.VerifierFunc(func(context.Context, uint64, []byte) (bool, error) {
		return true, nil
	})
}

func sign(t *testing.T, b *beacon.LocalBeacon, round uint64) []byte {
	t.Helper()
	sig, err := b.Signature(context.Background(), round)
	if err != nil {
		t.Fatalf("failed to sign round %d: %v", round, err)
	}
	return sig
}

// TestEngineEndToEnd plays a full round between two players with real beacon
// signatures.
func TestEngineEndToEnd(t *testing.T) {
	ctx := context.Background()
	b := beacon.NewLocalBeacon(beacon.DefaultSuite(), nil)
	e := Engine{Verifier: b.Verifier(), Schedule: testSchedule}
	clock := beacon.NewManualClock(testSchedule.Genesis + 30)

	g := NewGame("alice")
	if err := g.Join("bob"); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(g, clock.Now()); err != nil {
		t.Fatal(err)
	}
	r := g.NextDrandRound()
	if r != 11 {
		t.Fatalf("expected first round 11, got %d", r)
	}

	c0, err := e.Draw(ctx, g, "alice", sign(t, b, r), clock.Advance(3))
	if err != nil {
		t.Fatalf("alice draw failed: %v", err)
	}
	if !c0.Valid() {
		t.Fatalf("invalid card %d", c0)
	}
	if g.CurrentPlayer() != 1 {
		t.Fatalf("expected bob's turn, got %d", g.CurrentPlayer())
	}
	if g.NextDrandRound() != r+1 {
		t.Fatalf("expected round %d, got %d", r+1, g.NextDrandRound())
	}

	c1, err := e.Draw(ctx, g, "bob", sign(t, b, r+1), clock.Advance(3))
	if err != nil {
		t.Fatalf("bob draw failed: %v", err)
	}
	if c0 == c1 {
		t.Fatal("same card drawn twice")
	}

	switch {
	case c0.Value() > c1.Value():
		if g.Players[0].Heap.Len() != 2 {
			t.Fatalf("alice should have won the round: %+v", g.Players)
		}
	case c1.Value() > c0.Value():
		if g.Players[1].Heap.Len() != 2 {
			t.Fatalf("bob should have won the round: %+v", g.Players)
		}
	default:
		if !g.Bataille {
			t.Fatal("equal values should start a bataille")
		}
	}
	if g.CardCount() != deck.NumCards {
		t.Fatalf("expected %d cards, got %d", deck.NumCards, g.CardCount())
	}
}

// TestEngineSameSignatureSameCard verifies that the drawn card depends only on
// the game state and the signature.
func TestEngineSameSignatureSameCard(t *testing.T) {
	e := Engine{Verifier: acceptAll(), Schedule: testSchedule}
	sig := []byte("the same beacon output")
	var cards []deck.Card
	for i := 0; i < 2; i++ {
		g := NewGame("alice")
		g.Join("bob")
		e.Start(g, testSchedule.Genesis)
		c, err := e.Draw(context.Background(), g, "alice", sig, testSchedule.Genesis)
		if err != nil {
			t.Fatal(err)
		}
		cards = append(cards, c)
	}
	if cards[0] != cards[1] {
		t.Fatalf("expected identical draws, got %v and %v", cards[0], cards[1])
	}
}

// TestEngineVerificationGate verifies that a rejected signature leaves the
// game exactly as it was.
func TestEngineVerificationGate(t *testing.T) {
	ctx := context.Background()
	b := beacon.NewLocalBeacon(beacon.DefaultSuite(), nil)
	e := Engine{Verifier: b.Verifier(), Schedule: testSchedule}

	g := NewGame("alice")
	g.Join("bob")
	e.Start(g, testSchedule.Genesis)
	before := g.Clone()

	// signature of the wrong round
	_, err := e.Draw(ctx, g, "alice", sign(t, b, g.NextDrandRound()+1), testSchedule.Genesis+60)
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if !reflect.DeepEqual(before, g) {
		t.Fatal("failed verification changed the game")
	}

	failing := Engine{
		Verifier: beacon.VerifierFunc(func(context.Context, uint64, []byte) (bool, error) {
			return false, errors.New("connection refused")
		}),
		Schedule: testSchedule,
	}
	_, err = failing.Draw(ctx, g, "alice", []byte{1}, testSchedule.Genesis+60)
	if !errors.Is(err, ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if !reflect.DeepEqual(before, g) {
		t.Fatal("verifier failure changed the game")
	}
}

func TestEngineTurnEnforcement(t *testing.T) {
	verified := false
	e := Engine{
		Verifier: beacon.VerifierFunc(func(context.Context, uint64, []byte) (bool, error) {
			verified = true
			return true, nil
		}),
		Schedule: testSchedule,
	}
	g := NewGame("alice")
	g.Join("bob")

	if _, err := e.Draw(context.Background(), g, "alice", []byte{1}, 0); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("expected ErrGameNotStarted, got %v", err)
	}
	e.Start(g, testSchedule.Genesis)
	before := g.Clone()
	if _, err := e.Draw(context.Background(), g, "bob", []byte{1}, 0); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if verified {
		t.Fatal("verifier consulted for an out of turn draw")
	}
	if !reflect.DeepEqual(before, g) {
		t.Fatal("out of turn draw changed the game")
	}
}

// TestEngineRandomGames plays whole games with random signatures and checks the
// invariants after every draw.
func TestEngineRandomGames(t *testing.T) {
	for _, players := range []int{2, 3, 5} {
		for seed := uint64(1); seed <= 3; seed++ {
			t.Run(fmt.Sprintf("%d players seed %d", players, seed), func(t *testing.T) {
				playRandomGame(t, players, seed)
			})
		}
	}
}

func playRandomGame(t *testing.T, players int, seed uint64) {
	ctx := context.Background()
	src := rand.New(rand.NewPCG(seed, uint64(players)))
	e := Engine{Verifier: acceptAll(), Schedule: testSchedule, Rules: Rules{BuriedCards: int(seed % 2)}}

	g := NewGame("p0")
	for i := 1; i < players; i++ {
		g.Join(Identity(fmt.Sprintf("p%d", i)))
	}
	now := testSchedule.Genesis
	e.Start(g, now)

	sig := make([]byte, 48)
	for draw := 0; draw < 20000 && g.Phase == PhaseStarted; draw++ {
		if src.IntN(2) == 0 {
			now += testSchedule.Period
		}
		idx := g.CurrentPlayer()
		if idx < 0 {
			t.Fatalf("draw %d: no current player in a started game", draw)
		}
		for i := range sig {
			sig[i] = byte(src.Uint32())
		}
		round := g.NextDrandRound()
		if _, err := e.Draw(ctx, g, g.Players[idx].Owner, sig, now); err != nil {
			t.Fatalf("draw %d: %v", draw, err)
		}
		if g.NextDrandRound() <= round {
			t.Fatalf("draw %d: round went from %d to %d", draw, round, g.NextDrandRound())
		}
		checkCards(t, g)
		if g.Phase == PhaseStarted && g.Turn >= len(g.contenders()) {
			t.Fatalf("draw %d: turn %d outside %v", draw, g.Turn, g.contenders())
		}
	}
	if g.Phase == PhaseFinished {
		w := g.Active[0]
		if g.Winner() != g.Players[w].Owner || g.Players[w].Heap.Len() != deck.NumCards {
			t.Fatalf("winner %q should hold every card: %+v", g.Winner(), g.Players[w])
		}
	}
}

func checkCards(t *testing.T, g *Game) {
	t.Helper()
	var seen [deck.NumCards]bool
	mark := func(d deck.Deck) {
		for _, c := range d {
			if !c.Valid() || seen[c] {
				t.Fatalf("card %d invalid or duplicated", c)
			}
			seen[c] = true
		}
	}
	mark(g.Shared)
	for _, p := range g.Players {
		mark(p.Heap)
		mark(p.Revealed)
	}
	if g.CardCount() != deck.NumCards {
		t.Fatalf("expected %d cards, got %d", deck.NumCards, g.CardCount())
	}
}
