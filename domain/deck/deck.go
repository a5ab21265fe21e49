// Package deck implements card piles and uniform draw-without-replacement.
package deck

import (
	"errors"
	"slices"
)

// ErrEmptyDeck is returned when drawing from a pile with no cards.
var ErrEmptyDeck = errors.New("empty deck")

// Source picks a uniform index in [0, n). *rng.Stream and *rand.Rand both satisfy it.
type Source interface {
	IntN(n int) int
}

// Deck is an ordered pile of cards. Order carries no game meaning: Draw
// reorders the pile.
type Deck []Card

// NewFull returns the 52 cards in index order.
func NewFull() Deck {
	d := make(Deck, NumCards)
	for i := range d {
		d[i] = Card(i)
	}
	return d
}

// Len returns the number of cards in the pile.
func (d Deck) Len() int {
	return len(d)
}

// Cards returns a copy of the pile.
func (d Deck) Cards() []Card {
	return slices.Clone([]Card(d))
}

// Clone returns an independent copy of the pile.
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	return slices.Clone(d)
}

// Contains reports whether c is in the pile.
func (d Deck) Contains(c Card) bool {
	return slices.Contains(d, c)
}

// Push appends cards on top of the pile.
func (d *Deck) Push(cards ...Card) {
	*d = append(*d, cards...)
}

// Take empties the pile and returns what it held.
func (d *Deck) Take() []Card {
	cards := *d
	*d = nil
	return cards
}

// Last returns the most recently pushed card.
func (d Deck) Last() (Card, bool) {
	if len(d) == 0 {
		return 0, false
	}
	return d[len(d)-1], true
}

// Draw removes a uniformly chosen card: the card at a random index is
// swapped with the last one, which is then popped.
func (d *Deck) Draw(src Source) (Card, error) {
	n := len(*d)
	if n == 0 {
		return 0, ErrEmptyDeck
	}
	i := src.IntN(n)
	cards := *d
	cards[i], cards[n-1] = cards[n-1], cards[i]
	card := cards[n-1]
	*d = cards[:n-1]
	return card, nil
}
