// internal/suggest/client.go
//
// HTTP client for the daily-suggestions service. Two operations:
//   - GET  /daily-game/suggestions  → today's suggested games
//   - POST /game/score              → record a completed score
//
// The service is treated as opaque: no response body beyond the
// envelope is consumed, and submission only cares about success or
// failure.

package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client is the boundary the resolver and submission coordinator
// depend on. Tests substitute fakes; production uses HTTPClient.
type Client interface {
	// Suggestions fetches today's suggestion set. A transport or
	// server error is returned as-is; a syntactically odd but
	// decodable body degrades to an empty set.
	Suggestions(ctx context.Context) (Set, error)

	// SubmitScore records a completed score for the given game.
	SubmitScore(ctx context.Context, gameID string, score int) error
}

// HTTPClient implements Client against the reference service.
type HTTPClient struct {
	base  string
	hc    *http.Client
	token string // optional bearer token
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient swaps the underlying *http.Client (timeouts, cookies).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.hc = hc }
}

// WithToken attaches a bearer token to every request.
func WithToken(tok string) Option {
	return func(c *HTTPClient) { c.token = tok }
}

// NewHTTPClient builds a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		base: strings.TrimRight(baseURL, "/"),
		hc:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.hc.Do(req)
}

// Suggestions implements Client.
func (c *HTTPClient) Suggestions(ctx context.Context) (Set, error) {
	res, err := c.do(ctx, http.MethodGet, "/daily-game/suggestions", nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggestions: unexpected status %d", res.StatusCode)
	}
	var ev Envelope
	if err := json.NewDecoder(res.Body).Decode(&ev); err != nil {
		// A malformed body is treated like a missing one: the game
		// stays playable without daily features.
		log.Warn().Err(err).Msg("suggestions: undecodable body, defaulting to empty set")
		return Set{}, nil
	}
	return ev.Games(), nil
}

type scoreReq struct {
	GameID string `json:"gameId"`
	Score  int    `json:"score"`
}

// SubmitScore implements Client.
func (c *HTTPClient) SubmitScore(ctx context.Context, gameID string, score int) error {
	res, err := c.do(ctx, http.MethodPost, "/game/score", scoreReq{GameID: gameID, Score: score})
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("submit score: unexpected status %d", res.StatusCode)
	}
	return nil
}
