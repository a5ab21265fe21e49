// Package ledger implements an append-only, hash-chained log of the
// operations committed on every game.
//
// # Core Components
//
// Ledger: an ordered list of blocks starting with a genesis block. Each block
// carries the hash of the previous one, so rewriting any past block breaks
// every hash after it.
//
// Action: one committed operation (create, join, start or draw) with enough
// data to replay it: the caller, the clock reading, and for draws the beacon
// round and signature.
//
// # Usage
//
// Append an Action after the operation it describes has been committed.
// Verify can be called at any time to check the whole chain, and ForGame
// returns the history used to replay a single game.
package ledger
