// Package registry owns every game and serializes the operations on each of
// them.
//
// Games are kept by a Store under ids assigned in creation order, starting
// at 0 and never reused. Memory keeps snapshots in process; SQLite persists
// one JSON document per game.
//
// Registry.Update runs a mutation on a private copy of the game while holding
// that game's lock, and saves the copy only when the mutation succeeds. Two
// calls on the same game never interleave; calls on different games do not
// wait on each other.
package registry
