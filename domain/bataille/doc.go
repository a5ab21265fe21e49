// Package bataille implements the domain logic of a beacon-seeded game of
// War ("bataille"): players, card piles, turn order, round resolution and
// tie-breaks.
//
// # Core Types
//
// Game: the complete state of one game, including the shared deck, the
// players, the active roster, the turn pointer and the bataille sub-state.
//
// Player: an owner identity with a personal heap and the cards revealed in
// the current round.
//
// Engine: runs one draw end to end. It checks the turn, asks the beacon
// verifier about the signature for the scheduled round, and only then seeds
// the card stream and mutates the game.
//
// # Game Flow
//
// A game goes Open → Started → Finished. Each started round, every active
// player reveals one card; the unique highest card takes every revealed card.
// Equal highest cards start a bataille restricted to the tied players, and
// the pot keeps growing until one of them reveals a unique highest card.
// Once the shared deck is empty, players draw from their own heap, and a
// player with no card left anywhere is eliminated. The last player standing
// wins.
//
// Every method mutates the Game it is called on. Callers that need
// all-or-nothing semantics run them on a Clone and keep the result only on
// success.
package bataille
