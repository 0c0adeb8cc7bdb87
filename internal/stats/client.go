// Package stats holds the shared HTTP plumbing for the game-stat providers:
// bounded-timeout fetches, adaptive rate limiting, loose JSON decoding and a
// TTL response cache.
package stats

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	simplejson "github.com/bitly/go-simplejson"
	"github.com/rs/zerolog"

	"github.com/RickyLoader/RileyBot-sub001/pkg/ratelimit"
)

// ErrNotFound means the provider answered with a well-formed "no such
// player". It is surfaced to the user as plain language, never retried.
var ErrNotFound = errors.New("stats: not found")

// TransportError covers everything between us and a usable response:
// timeouts, unreachable hosts, server errors, malformed payloads.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stats: request to %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client is the shared fetcher behind every provider.
type Client struct {
	http    *http.Client
	limiter *ratelimit.AdaptiveLimiter
	log     zerolog.Logger
}

// NewClient builds a client with a hard request timeout. Provider calls must
// return rather than hang, the command layer treats failure as a normal path.
func NewClient(timeout time.Duration, log zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		limiter: ratelimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5),
		log:     log,
	}
}

// FetchBytes performs a rate-limited GET and returns the raw body.
// A 404 maps to ErrNotFound, anything else non-2xx to TransportError.
func (c *Client) FetchBytes(ctx context.Context, url string, header http.Header) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.limiter.Overloaded()
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.limiter.Overloaded()
		return nil, &TransportError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &TransportError{URL: url, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	c.limiter.Success()
	return body, nil
}

// FetchJSON fetches and decodes a loose JSON document. When the payload
// carries a "status" field it is probed first: "error" or a "no player"
// style message maps to ErrNotFound before any field extraction happens.
func (c *Client) FetchJSON(ctx context.Context, url string, header http.Header) (*simplejson.Json, error) {
	body, err := c.FetchBytes(ctx, url, header)
	if err != nil {
		return nil, err
	}

	js, err := simplejson.NewJson(body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("malformed JSON: %w", err)}
	}

	if status, ok := js.CheckGet("status"); ok {
		if s, err := status.String(); err == nil && s != "" && s != "success" && s != "ok" {
			return nil, ErrNotFound
		}
	}
	return js, nil
}
