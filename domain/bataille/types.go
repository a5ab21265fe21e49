package bataille

import "github.com/luca-patrignani/drand-bataille/domain/deck"

// Identity identifies a caller. The zero value means "nobody".
type Identity string

// NoWinner is returned by Winner while the game is not finished.
const NoWinner Identity = ""

// Phase is the lifecycle stage of a game.
type Phase string

const (
	// PhaseOpen accepts new players.
	PhaseOpen Phase = "open"
	// PhaseStarted accepts draws.
	PhaseStarted Phase = "started"
	// PhaseFinished has a winner, or nobody left.
	PhaseFinished Phase = "finished"
)

type Player struct {
	Owner    Identity  `json:"owner"`
	Heap     deck.Deck `json:"heap"`     // cards won, drawn once the shared deck is empty
	Revealed deck.Deck `json:"revealed"` // cards on the table, all of them part of the pot
}

// Game is the state of one game. Players is never reordered; Active and Tied
// hold indexes into it.
type Game struct {
	Shared    deck.Deck `json:"shared"`
	Players   []Player  `json:"players"`
	Active    []int     `json:"active"`
	Turn      int       `json:"turn"` // index into the contenders (Tied in bataille, Active otherwise)
	Phase     Phase     `json:"phase"`
	Bataille  bool      `json:"bataille"`
	Tied      []int     `json:"tied,omitempty"`
	Buried    int       `json:"buried"` // face-down cards drawn by the current contender in this bataille step
	NextRound uint64    `json:"next_round"`
	Draws     uint64    `json:"draws"`
}

// Rules are the tunable parts of the tie-break.
type Rules struct {
	// BuriedCards is the number of face-down cards each tied player draws
	// before revealing the card that is compared.
	BuriedCards int `json:"buried_cards"`
	// CompareFullCard orders cards by their full index (family breaks ties
	// between equal values) instead of by value alone.
	CompareFullCard bool `json:"compare_full_card"`
}

func (r Rules) rank(c deck.Card) int {
	if r.CompareFullCard {
		return int(c)
	}
	return int(c.Value())
}
