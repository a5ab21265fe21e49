package beacon

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"go.dedis.ch/kyber/v4"
	"go.dedis.ch/kyber/v4/pairing"
	"go.dedis.ch/kyber/v4/pairing/bn256"
	"go.dedis.ch/kyber/v4/sign/bls"
)

// Verifier confirms that sig is the beacon output for round.
// An error means the check itself could not be carried out.
type Verifier interface {
	Verify(ctx context.Context, round uint64, sig []byte) (bool, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, round uint64, sig []byte) (bool, error)

func (f VerifierFunc) Verify(ctx context.Context, round uint64, sig []byte) (bool, error) {
	return f(ctx, round, sig)
}

// ErrEmptySignature is returned when no signature is supplied.
var ErrEmptySignature = errors.New("empty beacon signature")

// RoundMessage is the message signed for round by an unchained beacon:
// SHA-256 of the big-endian round number.
func RoundMessage(round uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], round)
	h := sha256.Sum256(buf[:])
	return h[:]
}

// SchemeID names the signature scheme of this package in beacon info
// documents: unchained rounds signed on G1 of bn256. Networks on other curves,
// such as drand quicknet on BLS12-381, are not verifiable with it.
const SchemeID = "bls-unchained-on-g1"

// DefaultSuite is the pairing suite used by LocalBeacon and BLSVerifier
// unless another one is given.
func DefaultSuite() pairing.Suite {
	return bn256.NewSuite()
}

// BLSVerifier checks unchained beacon signatures against the group public key.
// Signatures live on G1 and the public key on G2.
type BLSVerifier struct {
	suite  pairing.Suite
	public kyber.Point
}

// NewBLSVerifier builds a verifier for the given suite and public key.
func NewBLSVerifier(suite pairing.Suite, public kyber.Point) *BLSVerifier {
	return &BLSVerifier{
		suite:  suite,
		public: public,
	}
}

// NewBLSVerifierFromBytes decodes a marshalled G2 public key.
func NewBLSVerifierFromBytes(suite pairing.Suite, public []byte) (*BLSVerifier, error) {
	p := suite.G2().Point()
	if err := p.UnmarshalBinary(public); err != nil {
		return nil, fmt.Errorf("decode beacon public key: %w", err)
	}
	return NewBLSVerifier(suite, p), nil
}

// NewBLSVerifierFromHex decodes a hex public key for the default suite.
func NewBLSVerifierFromHex(public string) (*BLSVerifier, error) {
	b, err := hex.DecodeString(public)
	if err != nil {
		return nil, fmt.Errorf("decode beacon public key: %w", err)
	}
	return NewBLSVerifierFromBytes(DefaultSuite(), b)
}

// Verify reports whether sig is a valid signature of RoundMessage(round).
// A malformed signature is a failed verification, not an error.
func (v *BLSVerifier) Verify(ctx context.Context, round uint64, sig []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(sig) == 0 {
		return false, ErrEmptySignature
	}
	if err := bls.Verify(v.suite, v.public, RoundMessage(round), sig); err != nil {
		return false, nil
	}
	return true, nil
}
