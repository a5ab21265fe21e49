package identity

import (
	"sync"
	"time"
)

// ReplayGuard remembers the nonce of every accepted request for as long as
// its timestamp passes the skew check, so each signed request is accepted
// once. With a non-positive skew nonces are kept forever.
type ReplayGuard struct {
	mu        sync.Mutex
	skew      time.Duration
	seen      map[string]time.Time
	nextPrune time.Time
}

func NewReplayGuard(skew time.Duration) *ReplayGuard {
	return &ReplayGuard{skew: skew, seen: make(map[string]time.Time)}
}

// Check records r and fails with ErrReplayed if the same key already used
// its nonce. Only requests whose signature verified should be checked.
func (g *ReplayGuard) Check(r *Request, now time.Time) error {
	if r.Nonce == "" {
		return ErrMissingNonce
	}
	id := Of(r.Key) + "/" + r.Nonce

	g.mu.Lock()
	defer g.mu.Unlock()
	g.prune(now)
	if _, ok := g.seen[id]; ok {
		return ErrReplayed
	}
	var expiry time.Time
	if g.skew > 0 {
		expiry = time.Unix(r.Timestamp, 0).Add(g.skew)
	}
	g.seen[id] = expiry
	return nil
}

// Len returns the number of remembered nonces.
func (g *ReplayGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}

// prune drops the nonces of requests that are now stale anyway. It runs at
// most once per skew.
func (g *ReplayGuard) prune(now time.Time) {
	if g.skew <= 0 || now.Before(g.nextPrune) {
		return
	}
	for id, expiry := range g.seen {
		if now.After(expiry) {
			delete(g.seen, id)
		}
	}
	g.nextPrune = now.Add(g.skew)
}
