package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrEmpty is returned by reads on a ledger without blocks.
var ErrEmpty = errors.New("ledger is empty")

type Ledger struct {
	mu     sync.RWMutex
	blocks []Block
}

// New creates a ledger holding only the genesis block. The genesis block has
// index 0 and previous hash "0".
func New() *Ledger {
	genesis := Block{
		Index:     0,
		Timestamp: time.Now().Unix(),
		PrevHash:  "0",
		Action:    Action{ID: uuid.New(), Kind: KindGenesis, Card: -1},
	}
	genesis.Hash = calculateHash(genesis)
	return &Ledger{blocks: []Block{genesis}}
}

// Append links a copy of a to the chain and returns the new block. An Action
// without an id gets a fresh one.
func (l *Ledger) Append(a Action) (Block, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) == 0 {
		return Block{}, ErrEmpty
	}
	a = a.clone()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	latest := l.blocks[len(l.blocks)-1]
	b := Block{
		Index:     latest.Index + 1,
		Timestamp: time.Now().Unix(),
		PrevHash:  latest.Hash,
		Action:    a,
	}
	b.Hash = calculateHash(b)
	if err := validateBlock(b, latest); err != nil {
		return Block{}, fmt.Errorf("invalid block: %w", err)
	}
	l.blocks = append(l.blocks, b)
	return b.clone(), nil
}

// Latest returns the most recently appended block.
func (l *Ledger) Latest() (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.blocks) == 0 {
		return Block{}, ErrEmpty
	}
	return l.blocks[len(l.blocks)-1].clone(), nil
}

// ByIndex returns the block at index.
func (l *Ledger) ByIndex(index int) (Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 || index >= len(l.blocks) {
		return Block{}, fmt.Errorf("index %d out of range", index)
	}
	return l.blocks[index].clone(), nil
}

// Len returns the number of blocks, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// ForGame returns the actions recorded for a game, oldest first.
func (l *Ledger) ForGame(gameID uint64) []Action {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var actions []Action
	for _, b := range l.blocks[min(1, len(l.blocks)):] {
		if b.Action.GameID == gameID {
			actions = append(actions, b.Action.clone())
		}
	}
	return actions
}

// Verify checks the genesis block, then the index, link and hash of every
// following block.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.blocks) == 0 {
		return ErrEmpty
	}
	if l.blocks[0].PrevHash != "0" || l.blocks[0].Hash != calculateHash(l.blocks[0]) {
		return fmt.Errorf("invalid genesis block")
	}
	for i := 1; i < len(l.blocks); i++ {
		if err := validateBlock(l.blocks[i], l.blocks[i-1]); err != nil {
			return fmt.Errorf("block %d invalid: %w", i, err)
		}
	}
	return nil
}

func (a Action) clone() Action {
	a.Signature = bytes.Clone(a.Signature)
	return a
}

func (b Block) clone() Block {
	b.Action = b.Action.clone()
	return b
}

func validateBlock(current, previous Block) error {
	if current.Index != previous.Index+1 {
		return fmt.Errorf("invalid index: expected %d, got %d", previous.Index+1, current.Index)
	}
	if current.PrevHash != previous.Hash {
		return fmt.Errorf("invalid prev hash: expected %s, got %s", previous.Hash, current.PrevHash)
	}
	if expected := calculateHash(current); current.Hash != expected {
		return fmt.Errorf("invalid hash: expected %s, got %s", expected, current.Hash)
	}
	return nil
}

// calculateHash is the SHA-256 of the index, timestamp, previous hash and
// JSON-encoded action.
func calculateHash(b Block) string {
	action, _ := json.Marshal(b.Action)
	data := fmt.Sprintf("%d%d%s%s", b.Index, b.Timestamp, b.PrevHash, action)
	h := sha256.Sum256([]byte(data))
	return hex.EncodeToString(h[:])
}
