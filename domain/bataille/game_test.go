package bataille

import (
	"errors"
	"slices"
	"testing"

	"github.com/luca-patrignani/drand-bataille/domain/deck"
)

// topCard always picks the last card of a pile, so a test decides the order
// in which cards come out.
type topCard struct{}

func (topCard) IntN(n int) int { return n - 1 }

func card(t *testing.T, family, value uint8) deck.Card {
	t.Helper()
	c, err := deck.NewCard(family, value)
	if err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	return c
}

// stacked returns a pile from which topCard draws cards in the given order.
func stacked(cards ...deck.Card) deck.Deck {
	d := deck.Deck(slices.Clone(cards))
	slices.Reverse(d)
	return d
}

// play draws for caller the way Engine.Draw does once the signature is verified.
func play(t *testing.T, g *Game, caller Identity, r Rules) deck.Card {
	t.Helper()
	idx, err := g.CheckDraw(caller)
	if err != nil {
		t.Fatalf("%s cannot draw: %v", caller, err)
	}
	c, err := g.take(idx, topCard{})
	if err != nil {
		t.Fatalf("%s draw failed: %v", caller, err)
	}
	g.reveal(idx, c, r)
	return c
}

func startedGame(t *testing.T, players ...Identity) *Game {
	t.Helper()
	g := NewGame(players[0])
	for _, p := range players[1:] {
		if err := g.Join(p); err != nil {
			t.Fatalf("join %s: %v", p, err)
		}
	}
	if err := g.Start(1); err != nil {
		t.Fatalf("start: %v", err)
	}
	return g
}

// TestNewGame verifies that a created game holds the full deck and its owner
// as the only active player.
func TestNewGame(t *testing.T) {
	g := NewGame("alice")
	if g.Phase != PhaseOpen {
		t.Fatalf("expected open game, got %s", g.Phase)
	}
	if g.Shared.Len() != deck.NumCards || g.CardCount() != deck.NumCards {
		t.Fatalf("expected %d cards, got %d", deck.NumCards, g.Shared.Len())
	}
	if len(g.Players) != 1 || g.Players[0].Owner != "alice" || !slices.Equal(g.Active, []int{0}) {
		t.Fatalf("unexpected roster %+v %v", g.Players, g.Active)
	}
	if g.Winner() != NoWinner {
		t.Fatal("open game should have no winner")
	}
}

func TestJoinAndStart(t *testing.T) {
	g := NewGame("alice")
	if err := g.Join("bob"); err != nil {
		t.Fatal(err)
	}
	if err := g.Start(7); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhaseStarted || g.NextDrandRound() != 7 || g.TurnIndex() != 0 {
		t.Fatalf("unexpected state after start: %+v", g)
	}
	if err := g.Join("carol"); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("expected ErrGameAlreadyStarted on join, got %v", err)
	}
	if err := g.Start(8); !errors.Is(err, ErrGameAlreadyStarted) {
		t.Fatalf("expected ErrGameAlreadyStarted on restart, got %v", err)
	}
	if g.NextDrandRound() != 7 {
		t.Fatal("failed restart changed the round")
	}
}

// TestStartAlone verifies that a game nobody joined is over as soon as it starts.
func TestStartAlone(t *testing.T) {
	g := NewGame("alice")
	if err := g.Start(1); err != nil {
		t.Fatal(err)
	}
	if g.Phase != PhaseFinished || g.Winner() != "alice" {
		t.Fatalf("expected alice to win alone, got %s %q", g.Phase, g.Winner())
	}
	if _, err := g.CheckDraw("alice"); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("expected ErrGameNotStarted, got %v", err)
	}
}

func TestCheckDraw(t *testing.T) {
	g := NewGame("alice")
	g.Join("bob")
	if _, err := g.CheckDraw("alice"); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("expected ErrGameNotStarted, got %v", err)
	}
	g.Start(1)
	if _, err := g.CheckDraw("bob"); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn, got %v", err)
	}
	if _, err := g.CheckDraw("mallory"); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("expected ErrOutOfTurn for a stranger, got %v", err)
	}
	if idx, err := g.CheckDraw("alice"); err != nil || idx != 0 {
		t.Fatalf("expected alice at index 0, got %d, %v", idx, err)
	}
}

// TestRoundWinnerTakesPot verifies that the unique highest card collects every
// revealed card of the round.
func TestRoundWinnerTakesPot(t *testing.T) {
	g := startedGame(t, "alice", "bob", "carol")
	g.Shared = stacked(card(t, deck.Club, 3), card(t, deck.Heart, 11), card(t, deck.Spade, 0), card(t, deck.Diamond, 8))

	play(t, g, "alice", Rules{})
	if g.CurrentPlayer() != 1 {
		t.Fatalf("expected bob's turn, got %d", g.CurrentPlayer())
	}
	play(t, g, "bob", Rules{})
	play(t, g, "carol", Rules{})

	if g.Bataille {
		t.Fatal("unexpected bataille")
	}
	if g.TurnIndex() != 0 {
		t.Fatalf("turn should wrap to 0, got %d", g.TurnIndex())
	}
	if g.Players[1].Heap.Len() != 3 {
		t.Fatalf("bob should hold the 3 revealed cards, got %v", g.Players[1].Heap)
	}
	for i, p := range g.Players {
		if p.Revealed.Len() != 0 {
			t.Fatalf("player %d still has revealed cards", i)
		}
	}
	if g.Shared.Len() != 1 || g.Draws != 3 {
		t.Fatalf("unexpected shared %v, draws %d", g.Shared, g.Draws)
	}
}

// TestTieStartsBataille verifies that equal highest cards restrict the next
// draws to the tied players and that the whole pot goes to the tie winner.
func TestTieStartsBataille(t *testing.T) {
	g := startedGame(t, "alice", "bob", "carol")
	g.Shared = stacked(
		card(t, deck.Club, 5), card(t, deck.Heart, 5), card(t, deck.Spade, 2),
		card(t, deck.Spade, 9), card(t, deck.Diamond, 1),
		card(t, deck.Club, 0),
	)

	play(t, g, "alice", Rules{})
	play(t, g, "bob", Rules{})
	play(t, g, "carol", Rules{})

	if !g.Bataille || !slices.Equal(g.Tied, []int{0, 1}) {
		t.Fatalf("expected bataille between alice and bob, got %v %v", g.Bataille, g.Tied)
	}
	if _, err := g.CheckDraw("carol"); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("carol should not play during the bataille, got %v", err)
	}
	if g.CardCount() != 6 {
		t.Fatalf("cards lost: %d", g.CardCount())
	}

	play(t, g, "alice", Rules{})
	if _, err := g.CheckDraw("carol"); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("carol should not play during the bataille, got %v", err)
	}
	play(t, g, "bob", Rules{})

	if g.Bataille || g.Tied != nil {
		t.Fatal("bataille should be over")
	}
	if g.Players[0].Heap.Len() != 5 {
		t.Fatalf("alice should take the 5 cards of the pot, got %v", g.Players[0].Heap)
	}
	if g.CurrentPlayer() != 0 {
		t.Fatalf("a new round starts with alice, got %d", g.CurrentPlayer())
	}
}

// TestBuriedCards verifies that tied players draw face-down cards before the
// card that is compared.
func TestBuriedCards(t *testing.T) {
	rules := Rules{BuriedCards: 1}
	g := startedGame(t, "alice", "bob")
	g.Shared = stacked(
		card(t, deck.Club, 7), card(t, deck.Heart, 7),
		card(t, deck.Spade, 12), card(t, deck.Spade, 1),
		card(t, deck.Diamond, 12), card(t, deck.Club, 2),
	)
	play(t, g, "alice", rules)
	play(t, g, "bob", rules)
	if !g.Bataille {
		t.Fatal("expected bataille")
	}

	play(t, g, "alice", rules) // face down
	if g.CurrentPlayer() != 0 || g.Buried != 1 {
		t.Fatalf("alice should draw again, current %d buried %d", g.CurrentPlayer(), g.Buried)
	}
	play(t, g, "alice", rules)
	play(t, g, "bob", rules) // face down
	play(t, g, "bob", rules)

	// alice reveals the 3, bob the 4: the aces stay buried
	if g.Bataille || g.Players[1].Heap.Len() != 6 {
		t.Fatalf("bob should take the 6 cards, got %v", g.Players[1].Heap)
	}
}

func TestCompareFullCard(t *testing.T) {
	g := startedGame(t, "alice", "bob")
	g.Shared = stacked(card(t, deck.Spade, 5), card(t, deck.Heart, 5), card(t, deck.Club, 0))
	rules := Rules{CompareFullCard: true}
	play(t, g, "alice", rules)
	play(t, g, "bob", rules)
	if g.Bataille || g.Players[0].Heap.Len() != 2 {
		t.Fatalf("spades should beat hearts, got %+v", g.Players)
	}
}

// TestEliminationAndWinner verifies that once the shared deck is empty a player
// with no card left is removed from the roster, and the last one wins.
func TestEliminationAndWinner(t *testing.T) {
	g := startedGame(t, "alice", "bob")
	g.Shared = nil
	g.Players[0].Heap = stacked(card(t, deck.Spade, 12))
	g.Players[1].Heap = stacked(card(t, deck.Club, 0))

	play(t, g, "alice", Rules{})
	play(t, g, "bob", Rules{})

	if g.Phase != PhaseFinished || g.Winner() != "alice" {
		t.Fatalf("expected alice to win, got %s %q", g.Phase, g.Winner())
	}
	if !slices.Equal(g.Active, []int{0}) || len(g.Players) != 2 {
		t.Fatalf("bob should stay in history only, active %v", g.Active)
	}
	if g.Players[0].Heap.Len() != 2 {
		t.Fatalf("alice should hold every card, got %v", g.Players[0].Heap)
	}
}

func TestEliminationKeepsOthersPlaying(t *testing.T) {
	g := startedGame(t, "alice", "bob", "carol")
	g.Shared = nil
	g.Players[0].Heap = stacked(card(t, deck.Spade, 12), card(t, deck.Spade, 11))
	g.Players[1].Heap = stacked(card(t, deck.Club, 0))
	g.Players[2].Heap = stacked(card(t, deck.Club, 1), card(t, deck.Club, 2))

	play(t, g, "alice", Rules{})
	play(t, g, "bob", Rules{})
	play(t, g, "carol", Rules{})

	if g.Phase != PhaseStarted || !slices.Equal(g.Active, []int{0, 2}) {
		t.Fatalf("expected bob eliminated only, got %s %v", g.Phase, g.Active)
	}
	if _, err := g.CheckDraw("bob"); !errors.Is(err, ErrOutOfTurn) {
		t.Fatalf("eliminated player drew, got %v", err)
	}
	play(t, g, "alice", Rules{})
	play(t, g, "carol", Rules{})
	if g.Winner() != NoWinner {
		t.Fatal("winner declared too early")
	}
}

// TestBatailleForfeit verifies that a tied player with nothing left to draw
// gives up the pot to the other tied player.
func TestBatailleForfeit(t *testing.T) {
	g := startedGame(t, "alice", "bob")
	g.Shared = nil
	g.Players[0].Heap = stacked(card(t, deck.Club, 5), card(t, deck.Spade, 1))
	g.Players[1].Heap = stacked(card(t, deck.Heart, 5))

	play(t, g, "alice", Rules{})
	play(t, g, "bob", Rules{})

	if g.Phase != PhaseFinished || g.Winner() != "alice" {
		t.Fatalf("expected alice to win by forfeit, got %s %q", g.Phase, g.Winner())
	}
	if g.Players[0].Heap.Len() != 3 {
		t.Fatalf("alice should hold the 3 cards, got %v", g.Players[0].Heap)
	}
}

// TestBatailleStalemate verifies that when no tied player can go on, every
// revealed card goes back to its owner.
func TestBatailleStalemate(t *testing.T) {
	g := startedGame(t, "alice", "bob", "carol")
	g.Shared = nil
	g.Players[0].Heap = stacked(card(t, deck.Club, 5))
	g.Players[1].Heap = stacked(card(t, deck.Heart, 5))
	g.Players[2].Heap = stacked(card(t, deck.Spade, 0), card(t, deck.Spade, 1))

	play(t, g, "alice", Rules{})
	play(t, g, "bob", Rules{})
	play(t, g, "carol", Rules{})

	if g.Bataille || g.Phase != PhaseStarted {
		t.Fatalf("expected a new round, got bataille=%v %s", g.Bataille, g.Phase)
	}
	want := []int{1, 1, 2}
	for i, p := range g.Players {
		if p.Heap.Len() != want[i] || p.Revealed.Len() != 0 {
			t.Fatalf("player %d: heap %v revealed %v", i, p.Heap, p.Revealed)
		}
	}
	if g.CurrentPlayer() != 0 {
		t.Fatalf("expected alice to start the new round, got %d", g.CurrentPlayer())
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := startedGame(t, "alice", "bob")
	c := g.Clone()
	play(t, c, "alice", Rules{})
	if g.Shared.Len() != deck.NumCards || g.Players[0].Revealed.Len() != 0 || g.Draws != 0 {
		t.Fatal("playing on the clone changed the original")
	}
	c.Active[0] = 1
	if g.Active[0] != 0 {
		t.Fatal("clone shares its roster")
	}
}

func TestCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNoSuchGame, "no_such_game"},
		{ErrGameAlreadyStarted, "game_already_started"},
		{ErrGameNotStarted, "game_not_started"},
		{errors.Join(errors.New("context"), ErrOutOfTurn), "out_of_turn"},
		{ErrVerificationFailed, "verification_failed"},
		{ErrHeapExhausted, "heap_exhausted"},
		{errors.New("boom"), "internal"},
	}
	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Errorf("Code(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}
