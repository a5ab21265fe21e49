// Package identity authenticates callers with ed25519 signed requests.
//
// A caller is identified by the hex encoding of its public key. Every request
// carries the key, a Unix timestamp and a signature over the method, path,
// timestamp, a nonce and the body, so a request cannot be moved to another
// endpoint, and a ReplayGuard accepts it at most once.
package identity

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingSignature = errors.New("missing signature")
	ErrBadSignature     = errors.New("bad signature")
	ErrStale            = errors.New("request timestamp outside the allowed skew")
	ErrMissingNonce     = errors.New("missing nonce")
	ErrReplayed         = errors.New("request already accepted")
)

// Request is the signed part of a call.
type Request struct {
	Method    string            `json:"method"`
	Path      string            `json:"path"`
	Timestamp int64             `json:"ts"`
	Nonce     string            `json:"nonce"`
	Body      []byte            `json:"body"`
	Key       ed25519.PublicKey `json:"key"`
	Signature []byte            `json:"sig,omitempty"`
}

// serialize returns the JSON form of the request with the signature cleared.
// An empty body and no body sign the same.
func (r *Request) serialize() ([]byte, error) {
	tmp := *r
	tmp.Signature = nil
	if len(tmp.Body) == 0 {
		tmp.Body = nil
	}
	return json.Marshal(tmp)
}

// Sign stamps the request with now and a fresh nonce, unless it already has
// one, and signs it with priv.
func (r *Request) Sign(priv ed25519.PrivateKey, now time.Time) error {
	if len(priv) != ed25519.PrivateKeySize {
		return fmt.Errorf("invalid private key of %d bytes", len(priv))
	}
	r.Key = priv.Public().(ed25519.PublicKey)
	r.Timestamp = now.Unix()
	if r.Nonce == "" {
		r.Nonce = uuid.NewString()
	}
	b, err := r.serialize()
	if err != nil {
		return err
	}
	r.Signature = ed25519.Sign(priv, b)
	return nil
}

// Verify checks the signature and that the timestamp is within skew of now,
// and returns the caller identity.
func (r *Request) Verify(now time.Time, skew time.Duration) (string, error) {
	if len(r.Signature) == 0 {
		return "", ErrMissingSignature
	}
	if len(r.Key) != ed25519.PublicKeySize {
		return "", fmt.Errorf("%w: public key of %d bytes", ErrBadSignature, len(r.Key))
	}
	b, err := r.serialize()
	if err != nil {
		return "", err
	}
	if !ed25519.Verify(r.Key, b, r.Signature) {
		return "", ErrBadSignature
	}
	if d := now.Sub(time.Unix(r.Timestamp, 0)).Abs(); skew > 0 && d > skew {
		return "", fmt.Errorf("%w: %s", ErrStale, d)
	}
	return Of(r.Key), nil
}

// Of returns the identity of a public key.
func Of(pub ed25519.PublicKey) string {
	return hex.EncodeToString(pub)
}
