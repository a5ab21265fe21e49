package api

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/luca-patrignani/drand-bataille/application"
	"github.com/luca-patrignani/drand-bataille/identity"
)

// Client calls the API as the owner of a signing key.
type Client struct {
	base string
	key  ed25519.PrivateKey
	http *http.Client
}

// NewClient returns a client for the server at base. A nil httpClient means
// http.DefaultClient.
func NewClient(base string, key ed25519.PrivateKey, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: strings.TrimRight(base, "/"), key: key, http: httpClient}
}

// Identity returns the caller identity of the client key.
func (c *Client) Identity() string {
	return identity.Of(c.key.Public().(ed25519.PublicKey))
}

// APIError is a failure answered by the server.
type APIError struct {
	Status int
	ErrorResponse
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

func (c *Client) CreateGame(ctx context.Context) (uint64, error) {
	var resp createResponse
	err := c.do(ctx, http.MethodPost, "/games", nil, &resp)
	return resp.ID, err
}

func (c *Client) JoinGame(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/games/%d/join", id), nil, nil)
}

func (c *Client) StartGame(ctx context.Context, id uint64) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/games/%d/start", id), nil, nil)
}

func (c *Client) Draw(ctx context.Context, id uint64, sig []byte) (CardView, error) {
	var card CardView
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/games/%d/draw", id), drawRequest{Signature: hex.EncodeToString(sig)}, &card)
	return card, err
}

func (c *Client) Game(ctx context.Context, id uint64) (GameView, error) {
	var g GameView
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d", id), nil, &g)
	return g, err
}

func (c *Client) Audit(ctx context.Context, id uint64) (application.AuditReport, error) {
	var report application.AuditReport
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/games/%d/audit", id), nil, &report)
	return report, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		if err := identity.SignHTTP(req, c.key, time.Now()); err != nil {
			return fmt.Errorf("sign request: %w", err)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&apiErr.ErrorResponse); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
