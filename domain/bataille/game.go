package bataille

import (
	"fmt"
	"slices"

	"github.com/luca-patrignani/drand-bataille/domain/deck"
)

// NewGame returns an open game with the full shared deck. The owner is the
// first player and the only active one.
func NewGame(owner Identity) *Game {
	return &Game{
		Shared:  deck.NewFull(),
		Players: []Player{{Owner: owner}},
		Active:  []int{0},
		Phase:   PhaseOpen,
	}
}

// Join appends caller as a new active player.
func (g *Game) Join(caller Identity) error {
	if g.Phase != PhaseOpen {
		return ErrGameAlreadyStarted
	}
	g.Players = append(g.Players, Player{Owner: caller})
	g.Active = append(g.Active, len(g.Players)-1)
	return nil
}

// Start opens the game to draws, the first of which must be backed by round.
// A game with a single player is over as soon as it starts.
func (g *Game) Start(round uint64) error {
	if g.Phase != PhaseOpen {
		return ErrGameAlreadyStarted
	}
	g.Phase = PhaseStarted
	g.NextRound = round
	g.Turn = 0
	if len(g.Active) < 2 {
		g.finish()
	}
	return nil
}

// CheckDraw verifies that caller may draw now and returns its player index.
// It does not modify the game.
func (g *Game) CheckDraw(caller Identity) (int, error) {
	if g.Phase != PhaseStarted {
		return -1, ErrGameNotStarted
	}
	contenders := g.contenders()
	if g.Turn < 0 || g.Turn >= len(contenders) {
		return -1, fmt.Errorf("turn %d outside %d contenders", g.Turn, len(contenders))
	}
	idx := contenders[g.Turn]
	if g.Players[idx].Owner != caller {
		return -1, fmt.Errorf("%w: expected %s", ErrOutOfTurn, g.Players[idx].Owner)
	}
	return idx, nil
}

// CurrentPlayer returns the index of the player expected to draw, or -1.
func (g *Game) CurrentPlayer() int {
	contenders := g.contenders()
	if g.Phase != PhaseStarted || g.Turn >= len(contenders) {
		return -1
	}
	return contenders[g.Turn]
}

// Winner returns the last player standing once the game is finished.
func (g *Game) Winner() Identity {
	if g.Phase != PhaseFinished || len(g.Active) != 1 {
		return NoWinner
	}
	return g.Players[g.Active[0]].Owner
}

// NextDrandRound returns the beacon round that must back the next draw.
func (g *Game) NextDrandRound() uint64 {
	return g.NextRound
}

// TurnIndex returns the turn pointer.
func (g *Game) TurnIndex() int {
	return g.Turn
}

// CardCount returns the number of cards across every pile of the game.
func (g *Game) CardCount() int {
	n := g.Shared.Len()
	for _, p := range g.Players {
		n += p.Heap.Len() + p.Revealed.Len()
	}
	return n
}

// IsActive reports whether the player at idx is still in the game.
func (g *Game) IsActive(idx int) bool {
	return slices.Contains(g.Active, idx)
}

// Clone returns a deep copy of the game.
func (g *Game) Clone() *Game {
	c := *g
	c.Shared = g.Shared.Clone()
	c.Players = make([]Player, len(g.Players))
	for i, p := range g.Players {
		c.Players[i] = Player{
			Owner:    p.Owner,
			Heap:     p.Heap.Clone(),
			Revealed: p.Revealed.Clone(),
		}
	}
	c.Active = slices.Clone(g.Active)
	c.Tied = slices.Clone(g.Tied)
	return &c
}

// contenders are the players taking turns: the tied players during a
// bataille, the active roster otherwise.
func (g *Game) contenders() []int {
	if g.Bataille {
		return g.Tied
	}
	return g.Active
}

func (g *Game) canDraw(idx int) bool {
	return g.Shared.Len() > 0 || g.Players[idx].Heap.Len() > 0
}

// take removes a card for player idx: from the shared deck while it lasts,
// then from the player's heap.
func (g *Game) take(idx int, src deck.Source) (deck.Card, error) {
	if g.Shared.Len() > 0 {
		return g.Shared.Draw(src)
	}
	c, err := g.Players[idx].Heap.Draw(src)
	if err != nil {
		return 0, fmt.Errorf("%w: player %d", ErrHeapExhausted, idx)
	}
	return c, nil
}

// reveal puts card face up for player idx and moves the game forward.
func (g *Game) reveal(idx int, card deck.Card, r Rules) {
	g.Players[idx].Revealed.Push(card)
	g.Draws++
	if g.Bataille && g.Buried < r.BuriedCards && g.canDraw(idx) {
		// face down: the same contender draws again
		g.Buried++
		return
	}
	g.Buried = 0
	g.Turn++
	g.settle(r)
}

// settle brings a started game to a state where the contender at Turn can
// draw, resolving comparisons and removing players who cannot play.
func (g *Game) settle(r Rules) {
	for g.Phase == PhaseStarted {
		if len(g.Active) < 2 {
			g.finish()
			return
		}
		if g.Bataille {
			g.dropStuck()
			switch len(g.Tied) {
			case 0:
				g.stalemate()
				continue
			case 1:
				g.award(g.Tied[0])
				continue
			}
		}
		contenders := g.contenders()
		if g.Turn >= len(contenders) {
			g.Turn = 0
			g.compare(r)
			continue
		}
		if g.canDraw(contenders[g.Turn]) {
			return
		}
		// nothing left to play and nothing on the table
		g.Active = slices.Delete(g.Active, g.Turn, g.Turn+1)
	}
}

// dropStuck removes the tied players who have yet to draw in this step but
// have no card left. Their revealed cards stay in the pot.
func (g *Game) dropStuck() {
	kept := slices.DeleteFunc(slices.Clone(g.Tied[g.Turn:]), func(idx int) bool {
		return !g.canDraw(idx)
	})
	g.Tied = append(g.Tied[:g.Turn:g.Turn], kept...)
}

// compare resolves a completed round between the contenders.
func (g *Game) compare(r Rules) {
	best := -1
	var leaders []int
	for _, idx := range g.contenders() {
		c, ok := g.Players[idx].Revealed.Last()
		if !ok {
			continue
		}
		switch v := r.rank(c); {
		case v > best:
			best = v
			leaders = []int{idx}
		case v == best:
			leaders = append(leaders, idx)
		}
	}
	if len(leaders) == 1 {
		g.award(leaders[0])
		return
	}
	g.Bataille = true
	g.Tied = leaders
	g.Turn = 0
	g.Buried = 0
}

// award gives every card on the table to player w and eliminates the players
// left without cards.
func (g *Game) award(w int) {
	for i := range g.Players {
		g.Players[w].Heap.Push(g.Players[i].Revealed.Take()...)
	}
	g.endBataille()
	if g.Shared.Len() > 0 {
		return
	}
	g.Active = slices.DeleteFunc(g.Active, func(idx int) bool {
		p := g.Players[idx]
		return p.Heap.Len() == 0 && p.Revealed.Len() == 0
	})
}

// stalemate hands every revealed card back to its owner.
func (g *Game) stalemate() {
	for i := range g.Players {
		p := &g.Players[i]
		p.Heap.Push(p.Revealed.Take()...)
	}
	g.endBataille()
}

func (g *Game) endBataille() {
	g.Bataille = false
	g.Tied = nil
	g.Turn = 0
	g.Buried = 0
}

func (g *Game) finish() {
	if len(g.Active) == 1 {
		w := g.Active[0]
		for i := range g.Players {
			g.Players[w].Heap.Push(g.Players[i].Revealed.Take()...)
		}
	}
	g.endBataille()
	g.Phase = PhaseFinished
}
