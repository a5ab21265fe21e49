// Package beacon schedules, fetches and verifies the public randomness
// beacon rounds that back every draw.
//
// # Schedule
//
// A beacon network publishes round r at Genesis + (r-1)*Period. The round
// expected for the next draw is therefore (now-Genesis)/Period + 1.
//
// # Verification
//
// A Verifier confirms that a signature is the genuine beacon output for a
// round. BLSVerifier checks unchained BLS signatures locally with kyber;
// RemoteVerifier delegates to an already-deployed verification service.
//
// # Sources
//
// A Source produces the signature of a round: LocalBeacon signs rounds with
// its own key pair, HTTPRelay fetches them from a drand HTTP relay.
package beacon

import (
	"sync/atomic"
	"time"
)

// Schedule describes the fixed timing of a beacon network, in seconds.
type Schedule struct {
	Genesis uint64
	Period  uint64
}

// Quicknet is the drand quicknet schedule. Only its timing applies: quicknet
// signs on BLS12-381, outside SchemeID.
var Quicknet = Schedule{Genesis: 1692803367, Period: 3}

// ExpectedRound returns the round the beacon publishes at time now.
// Times before genesis map to round 1, the first round that will exist.
func (s Schedule) ExpectedRound(now uint64) uint64 {
	if now < s.Genesis || s.Period == 0 {
		return 1
	}
	return (now-s.Genesis)/s.Period + 1
}

// Next returns the round that must back the draw following one backed by
// used. It never returns a round at or below used.
func (s Schedule) Next(now, used uint64) uint64 {
	return max(s.ExpectedRound(now), used+1)
}

// RoundTime returns the Unix time at which round is published.
func (s Schedule) RoundTime(round uint64) uint64 {
	if round == 0 {
		return s.Genesis
	}
	return s.Genesis + (round-1)*s.Period
}

// Clock is the wall-clock collaborator, in Unix seconds.
type Clock interface {
	Now() uint64
}

// SystemClock reads the host clock.
type SystemClock struct{}

func (SystemClock) Now() uint64 {
	return uint64(time.Now().Unix())
}

// ManualClock is a settable clock for tests, demos and replays.
type ManualClock struct {
	now atomic.Uint64
}

// NewManualClock returns a clock stopped at now.
func NewManualClock(now uint64) *ManualClock {
	c := &ManualClock{}
	c.now.Store(now)
	return c
}

func (c *ManualClock) Now() uint64 {
	return c.now.Load()
}

// Set moves the clock to now.
func (c *ManualClock) Set(now uint64) {
	c.now.Store(now)
}

// Advance moves the clock forward by d seconds and returns the new time.
func (c *ManualClock) Advance(d uint64) uint64 {
	return c.now.Add(d)
}
