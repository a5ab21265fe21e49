// Package rng expands a single beacon signature into a deterministic stream
// of pseudo-random values.
//
// The stream is a counter-mode Keccak-256 hash chain: the seed is hashed once
// into a 32-byte state, and block i of the output is Keccak256(state || BE32(i)).
// It is not meant to produce long-lived secrets; it only turns one unpredictable
// beacon output into the handful of draws a deck needs.
package rng

import (
	"encoding/binary"
	"math/rand/v2"

	"golang.org/x/crypto/sha3"
)

// BlockSize is the size in bytes of one output block.
const BlockSize = 32

// Stream is a deterministic generator seeded from arbitrary entropy.
// Two streams seeded with the same entropy yield the same sequence.
type Stream struct {
	state   [BlockSize]byte
	counter uint32
}

// Seed creates a Stream whose state is the Keccak-256 digest of entropy.
func Seed(entropy []byte) *Stream {
	s := &Stream{}
	h := sha3.NewLegacyKeccak256()
	h.Write(entropy)
	h.Sum(s.state[:0])
	return s
}

// NextBlock returns the next 32 bytes of the stream.
func (s *Stream) NextBlock() [BlockSize]byte {
	var buf [BlockSize + 4]byte
	copy(buf[:BlockSize], s.state[:])
	binary.BigEndian.PutUint32(buf[BlockSize:], s.counter)
	s.counter++

	var out [BlockSize]byte
	h := sha3.NewLegacyKeccak256()
	h.Write(buf[:])
	h.Sum(out[:0])
	return out
}

// Uint32 consumes one block and returns its first four bytes.
func (s *Stream) Uint32() uint32 {
	b := s.NextBlock()
	return binary.LittleEndian.Uint32(b[:4])
}

// Uint64 consumes one block and returns its first eight bytes.
// It makes Stream a math/rand/v2 Source.
func (s *Stream) Uint64() uint64 {
	b := s.NextBlock()
	return binary.LittleEndian.Uint64(b[:8])
}

// Fill writes successive blocks into buf, truncating the last one.
func (s *Stream) Fill(buf []byte) {
	for i := 0; i < len(buf); i += BlockSize {
		b := s.NextBlock()
		copy(buf[i:], b[:])
	}
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Stream) IntN(n int) int {
	return rand.New(s).IntN(n)
}

// Counter reports how many blocks have been produced so far.
func (s *Stream) Counter() uint32 {
	return s.counter
}
