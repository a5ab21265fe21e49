package beacon

import (
	"context"
	"crypto/cipher"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/pairing"
	"go.dedis.ch/kyber/v4/sign/bls"
)

// Source produces the beacon signature of a round.
type Source interface {
	Signature(ctx context.Context, round uint64) ([]byte, error)
}

// LocalBeacon is an in-process beacon network holding a single BLS key pair.
// It signs rounds the way an unchained drand network does.
type LocalBeacon struct {
	suite   pairing.Suite
	private kyber.Scalar
	public  kyber.Point
}

// NewLocalBeacon generates a key pair from random. A nil random uses the
// suite's own random stream.
func NewLocalBeacon(suite pairing.Suite, random cipher.Stream) *LocalBeacon {
	if random == nil {
		random = suite.RandomStream()
	}
	private, public := bls.NewKeyPair(suite, random)
	return &LocalBeacon{
		suite:   suite,
		private: private,
		public:  public,
	}
}

// Signature signs RoundMessage(round).
func (b *LocalBeacon) Signature(ctx context.Context, round uint64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := bls.Sign(b.suite, b.private, RoundMessage(round))
	if err != nil {
		return nil, fmt.Errorf("sign round %d: %w", round, err)
	}
	return sig, nil
}

// Public returns the group public key.
func (b *LocalBeacon) Public() kyber.Point {
	return b.public
}

// PublicBytes returns the marshalled group public key.
func (b *LocalBeacon) PublicBytes() ([]byte, error) {
	return b.public.MarshalBinary()
}

// Verifier returns a BLSVerifier bound to this beacon's public key.
func (b *LocalBeacon) Verifier() *BLSVerifier {
	return NewBLSVerifier(b.suite, b.public)
}
