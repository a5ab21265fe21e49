package beacon

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type verifyRequest struct {
	Round     uint64 `json:"round"`
	Signature string `json:"signature"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// RemoteVerifier asks an already-deployed verification service whether a
// signature matches a round. Any transport or decoding problem is an error.
type RemoteVerifier struct {
	url    string
	client *http.Client
}

type remoteOption func(RemoteVerifier) RemoteVerifier

// WithHTTPClient replaces the default client. A nil client keeps it.
func WithHTTPClient(client *http.Client) remoteOption {
	return func(v RemoteVerifier) RemoteVerifier {
		if client != nil {
			v.client = client
		}
		return v
	}
}

// WithRequestTimeout bounds every verification call.
func WithRequestTimeout(timeout time.Duration) remoteOption {
	return func(v RemoteVerifier) RemoteVerifier {
		var c http.Client
		if v.client != nil {
			c = *v.client
		}
		c.Timeout = timeout
		v.client = &c
		return v
	}
}

// NewRemoteVerifier targets the service at url.
func NewRemoteVerifier(url string, opts ...remoteOption) *RemoteVerifier {
	v := RemoteVerifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		v = opt(v)
	}
	return &v
}

func (v *RemoteVerifier) Verify(ctx context.Context, round uint64, sig []byte) (bool, error) {
	if len(sig) == 0 {
		return false, ErrEmptySignature
	}
	body, err := json.Marshal(verifyRequest{Round: round, Signature: hex.EncodeToString(sig)})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verification service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("verification service: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("verification service: decode response: %w", err)
	}
	return out.Valid, nil
}

// HTTPRelay fetches beacon signatures from a drand HTTP relay
// (GET {base}/{chain}/public/{round}).
type HTTPRelay struct {
	base   string
	chain  string
	client *http.Client
}

// NewHTTPRelay targets the relay at base for the chain with the given hash.
// A nil client uses a client with a ten second timeout.
func NewHTTPRelay(base, chain string, client *http.Client) *HTTPRelay {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPRelay{
		base:   strings.TrimSuffix(base, "/"),
		chain:  chain,
		client: client,
	}
}

// Info describes a beacon network as its relay publishes it.
type Info struct {
	PublicKey   string `json:"public_key"`
	Period      uint64 `json:"period"`
	GenesisTime uint64 `json:"genesis_time"`
	Scheme      string `json:"schemeID"`
}

// Schedule returns the round timing of the network.
func (i Info) Schedule() Schedule {
	return Schedule{Genesis: i.GenesisTime, Period: i.Period}
}

// Info fetches GET {base}/{chain}/info.
func (r *HTTPRelay) Info(ctx context.Context) (Info, error) {
	var info Info
	url := fmt.Sprintf("%s/%s/info", r.base, r.chain)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return info, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return info, fmt.Errorf("fetch chain info: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return info, fmt.Errorf("fetch chain info: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("fetch chain info: %w", err)
	}
	return info, nil
}

type relayBeacon struct {
	Round     uint64 `json:"round"`
	Signature string `json:"signature"`
}

func (r *HTTPRelay) Signature(ctx context.Context, round uint64) ([]byte, error) {
	url := fmt.Sprintf("%s/%s/public/%d", r.base, r.chain, round)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch round %d: %w", round, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch round %d: status %d", round, resp.StatusCode)
	}
	var b relayBeacon
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("fetch round %d: %w", round, err)
	}
	if b.Round != round {
		return nil, fmt.Errorf("fetch round %d: relay answered round %d", round, b.Round)
	}
	sig, err := hex.DecodeString(b.Signature)
	if err != nil {
		return nil, fmt.Errorf("fetch round %d: %w", round, err)
	}
	return sig, nil
}
