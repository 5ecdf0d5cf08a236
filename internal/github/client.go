// Package github adapts the go-github REST client to repolens. It serves the
// public API and GitHub Enterprise, which exposes the same API under /api/v3/.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	gh "github.com/google/go-github/v62/github"
	"github.com/huangsam/repolens/internal/contract"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const (
	defaultTimeout = 20 * time.Second
	maxPages       = 10
	maxPerPage     = 100
)

// StatusCode returns the HTTP status carried by err, or 0 when err did not
// come from an API response.
func StatusCode(err error) int {
	var errResp *gh.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode
	}
	var rateErr *gh.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return rateErr.Response.StatusCode
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return abuseErr.Response.StatusCode
	}
	return 0
}

// Client talks to the GitHub REST API through go-github. GET responses are
// cached by the transport when a cache store is configured.
type Client struct {
	gh    *gh.Client
	cache *cachingTransport
	log   zerolog.Logger
}

var _ contract.SourceClient = &Client{} // Compile-time check

// Option customizes a Client.
type Option func(*Client)

// WithCache enables response caching with the given store and time to live.
func WithCache(store contract.CacheStore, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache.store = store
		c.cache.ttl = ttl
	}
}

// WithClock replaces the time source used for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.cache.now = now
	}
}

// WithLogger replaces the logger used for listing warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a client for baseAPI. A non-empty token authenticates
// every request through an oauth2 static token source. Any base URL other
// than the public API is treated as a GitHub Enterprise host.
func NewClient(ctx context.Context, token, baseAPI string, opts ...Option) (*Client, error) {
	httpClient := &http.Client{}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, src)
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	c := &Client{
		cache: &cachingTransport{
			base:        base,
			fingerprint: contract.TokenFingerprint(token),
			now:         time.Now,
		},
		log: *contract.Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	httpClient.Transport = c.cache
	httpClient.Timeout = defaultTimeout

	c.gh = gh.NewClient(httpClient)
	baseAPI = strings.TrimRight(baseAPI, "/")
	if baseAPI != "" && baseAPI != contract.DefaultAPIURL {
		enterprise, err := c.gh.WithEnterpriseURLs(baseAPI, baseAPI)
		if err != nil {
			return nil, fmt.Errorf("invalid api url %q: %w", baseAPI, err)
		}
		c.gh = enterprise
	}
	return c, nil
}

// warnTruncated records that a listing stopped at the page cap.
func (c *Client) warnTruncated(what string, collected int) {
	c.log.Warn().
		Str("listing", what).
		Int("collected", collected).
		Int("max_pages", maxPages).
		Msg("Listing truncated at page cap")
}
