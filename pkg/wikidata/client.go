// Package wikidata is a minimal read client for the wikidata.org action API,
// used to check whether a candidate fact already has a recorded claim.
package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

// DefaultEndpoint is the production wikidata action API.
const DefaultEndpoint = "https://www.wikidata.org/w/api.php"

const userAgent = "factloop/1.0 (tile-serving backend)"

// Config controls the client's endpoint and failure behavior.
type Config struct {
	// Endpoint overrides DefaultEndpoint, mainly for tests.
	Endpoint string
	// Timeout bounds each attempt. Zero selects 10s.
	Timeout time.Duration
	// RequestsPerSecond is the client-side rate limit. Zero or negative
	// disables limiting.
	RequestsPerSecond float64
	// MaxRetries is the number of additional attempts after the first, with
	// exponential backoff. Zero means no retry.
	MaxRetries int
}

// Client issues wbgetclaims reads. Safe for concurrent use.
type Client struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
	maxRetries uint64
}

// New creates a Client from cfg, applying defaults for zero values.
func New(cfg Config) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    cfg.Timeout,
		maxRetries: uint64(cfg.MaxRetries),
	}
}

// HasClaim reports whether the entity already has at least one claim for the
// given property. Transport and parse failures are retried with bounded
// exponential backoff; a request that still fails is returned as an error and
// the caller skips the entity for this pass.
func (c *Client) HasClaim(ctx context.Context, entityID, property string) (bool, error) {
	var has bool
	op := func() error {
		h, err := c.getClaims(ctx, entityID, property)
		if err != nil {
			return err
		}
		has = h
		return nil
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), c.maxRetries), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		return false, fmt.Errorf("wbgetclaims %s/%s: %w", entityID, property, err)
	}
	return has, nil
}

func (c *Client) getClaims(ctx context.Context, entityID, property string) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("action", "wbgetclaims")
	q.Set("format", "json")
	q.Set("entity", entityID)
	q.Set("property", property)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Claims map[string][]json.RawMessage `json:"claims"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	return len(payload.Claims[property]) > 0, nil
}
