package identity

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Header names of a signed HTTP request.
const (
	HeaderKey       = "X-Bataille-Key"
	HeaderTimestamp = "X-Bataille-Timestamp"
	HeaderSignature = "X-Bataille-Signature"
	HeaderNonce     = "X-Bataille-Nonce"
)

// FromHTTP reads the signed request out of r. The body is read and put back
// so handlers can still decode it.
func FromHTTP(r *http.Request) (*Request, error) {
	if r.Header.Get(HeaderSignature) == "" {
		return nil, ErrMissingSignature
	}
	key, err := hex.DecodeString(r.Header.Get(HeaderKey))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", HeaderKey, err)
	}
	sig, err := hex.DecodeString(r.Header.Get(HeaderSignature))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", HeaderSignature, err)
	}
	ts, err := strconv.ParseInt(r.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", HeaderTimestamp, err)
	}
	var body []byte
	if r.Body != nil {
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	return &Request{
		Method:    r.Method,
		Path:      r.URL.Path,
		Timestamp: ts,
		Nonce:     r.Header.Get(HeaderNonce),
		Body:      body,
		Key:       ed25519.PublicKey(key),
		Signature: sig,
	}, nil
}

// SignHTTP signs r with priv and sets the identity headers. It is the client
// side of FromHTTP.
func SignHTTP(r *http.Request, priv ed25519.PrivateKey, now time.Time) error {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}
	req := Request{Method: r.Method, Path: r.URL.Path, Body: body}
	if err := req.Sign(priv, now); err != nil {
		return err
	}
	r.Header.Set(HeaderKey, hex.EncodeToString(req.Key))
	r.Header.Set(HeaderTimestamp, strconv.FormatInt(req.Timestamp, 10))
	r.Header.Set(HeaderNonce, req.Nonce)
	r.Header.Set(HeaderSignature, hex.EncodeToString(req.Signature))
	return nil
}
