package deck

import (
	"fmt"

	"github.com/pterm/pterm"
)

// Deck geometry: 4 families of 13 values.
const (
	NumCards    = 52
	NumFamilies = 4
	NumValues   = 13
)

// Card families (0-3)
const (
	Club    = 0 // ♣ (black)
	Diamond = 1 // ♦ (red)
	Heart   = 2 // ♥ (red)
	Spade   = 3 // ♠ (black)
)

// Card is an index in [0, 52). The family is card/13 and the value card%13,
// value 0 being a two and value 12 an ace.
type Card uint8

// NewCard creates a Card from its family (0-3) and value (0-12).
func NewCard(family, value uint8) (Card, error) {
	if family >= NumFamilies || value >= NumValues {
		return 0, fmt.Errorf("invalid card %d, %d", family, value)
	}
	return Card(family*NumValues + value), nil
}

// FromInt converts a raw card number, rejecting anything outside [0, 52).
func FromInt(raw int) (Card, error) {
	if raw < 0 || raw >= NumCards {
		return 0, fmt.Errorf("card %d out of range", raw)
	}
	return Card(raw), nil
}

// Valid reports whether c is a card of the 52-card deck.
func (c Card) Valid() bool {
	return c < NumCards
}

// Family returns the family of the card (0-3: clubs, diamonds, hearts, spades).
func (c Card) Family() uint8 {
	return uint8(c) / NumValues
}

// Value returns the rank of the card used for comparisons (0-12).
func (c Card) Value() uint8 {
	return uint8(c) % NumValues
}

var valueNames = [NumValues]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// String returns the value followed by the coloured suit symbol.
func (c Card) String() string {
	if !c.Valid() {
		return "?"
	}
	var suit string
	switch c.Family() {
	case Club:
		suit = pterm.Black("♣")
	case Diamond:
		suit = pterm.LightRed("♦")
	case Heart:
		suit = pterm.LightRed("♥")
	case Spade:
		suit = pterm.Black("♠")
	}
	return valueNames[c.Value()] + suit
}

var suitSymbols = [NumFamilies]string{"♣", "♦", "♥", "♠"}

// Name returns the value followed by the plain suit symbol, e.g. "10♥".
func (c Card) Name() string {
	if !c.Valid() {
		return "?"
	}
	return valueNames[c.Value()] + suitSymbols[c.Family()]
}
