// Package application exposes the game operations to callers.
//
// The Orchestrator ties together the game registry, the beacon-gated draw
// engine, the clock and the ledger. Every mutating call runs as one atomic
// step on its game: it either commits and records one ledger action, or
// fails and leaves no trace.
//
// Audit replays a game from the ledger, verifying every beacon signature
// again, and checks that the replay ends in the stored state.
package application
