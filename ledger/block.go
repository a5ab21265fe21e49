package ledger

import (
	"github.com/google/uuid"
)

// Kind names the operation recorded by an Action.
type Kind string

const (
	KindGenesis Kind = "genesis"
	KindCreate  Kind = "create"
	KindJoin    Kind = "join"
	KindStart   Kind = "start"
	KindDraw    Kind = "draw"
)

// Action is a committed game operation.
type Action struct {
	ID     uuid.UUID `json:"id"`
	GameID uint64    `json:"game_id"`
	Kind   Kind      `json:"kind"`
	Caller string    `json:"caller,omitempty"`
	Now    uint64    `json:"now"` // clock reading used by the operation
	// draws only
	Round     uint64 `json:"round,omitempty"`
	Signature []byte `json:"signature,omitempty"`
	Card      int    `json:"card"`
}

// Block is one link of the chain.
type Block struct {
	Index     int    `json:"index"`
	Timestamp int64  `json:"timestamp"`
	PrevHash  string `json:"prev_hash"`
	Hash      string `json:"hash"`
	Action    Action `json:"action"`
}
