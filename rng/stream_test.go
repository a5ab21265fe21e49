package rng

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSeedIsKeccakOfEntropy(t *testing.T) {
	s := Seed(nil)
	// Keccak-256 of the empty string.
	want := "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
	if got := hex.EncodeToString(s.state[:]); got != want {
		t.Fatalf("expected state %s, got %s", want, got)
	}
}

func TestDeterminism(t *testing.T) {
	seeds := [][]byte{
		nil,
		[]byte("beacon"),
		bytes.Repeat([]byte{0xab}, 48),
	}
	for _, seed := range seeds {
		a := Seed(seed)
		b := Seed(seed)
		for i := 0; i < 200; i++ {
			if a.NextBlock() != b.NextBlock() {
				t.Fatalf("seed %x: streams diverged at block %d", seed, i)
			}
		}
		if a.Uint64() != b.Uint64() || a.Uint32() != b.Uint32() {
			t.Fatalf("seed %x: integer outputs diverged", seed)
		}
		if a.IntN(52) != b.IntN(52) {
			t.Fatalf("seed %x: IntN diverged", seed)
		}
	}
}

func TestDifferentSeedsDiffer(t *testing.T) {
	a := Seed([]byte("round 1"))
	b := Seed([]byte("round 2"))
	if a.NextBlock() == b.NextBlock() {
		t.Fatal("different seeds produced the same first block")
	}
}

func TestBlocksDoNotRepeat(t *testing.T) {
	s := Seed([]byte("no repeats"))
	seen := make(map[[BlockSize]byte]int)
	for i := 0; i < 1000; i++ {
		b := s.NextBlock()
		if j, ok := seen[b]; ok {
			t.Fatalf("block %d repeats block %d", i, j)
		}
		seen[b] = i
	}
	if s.Counter() != 1000 {
		t.Fatalf("expected counter 1000, got %d", s.Counter())
	}
}

func TestFillConcatenatesAndTruncates(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{name: "empty", size: 0},
		{name: "partial block", size: 5},
		{name: "exact block", size: BlockSize},
		{name: "several blocks", size: 3*BlockSize + 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed := []byte("fill")
			buf := make([]byte, tt.size)
			Seed(seed).Fill(buf)

			ref := Seed(seed)
			var want []byte
			for len(want) < tt.size {
				b := ref.NextBlock()
				want = append(want, b[:]...)
			}
			want = want[:tt.size]
			if !bytes.Equal(buf, want) {
				t.Errorf("expected %x, got %x", want, buf)
			}
		})
	}
}

func TestIntNRange(t *testing.T) {
	s := Seed([]byte("range"))
	for n := 1; n <= 52; n++ {
		for i := 0; i < 50; i++ {
			v := s.IntN(n)
			if v < 0 || v >= n {
				t.Fatalf("IntN(%d) returned %d", n, v)
			}
		}
	}
}
