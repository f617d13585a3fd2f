// Package flights wraps the Amadeus self-service REST API: flight offers, price
// confirmation, location autocomplete, hotels, activities and inspiration.
//
// Every operation has a deterministic demo fallback that is used when no
// credentials are configured or a token cannot be obtained. Remote failures
// degrade to empty results; only malformed inputs are returned as errors.
package flights

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"flytz/internal/config"
	"flytz/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// Amadeus endpoint paths.
const (
	pathToken        = "/v1/security/oauth2/token"
	pathFlightOffers = "/v2/shopping/flight-offers"
	pathPricing      = "/v1/shopping/flight-offers/pricing"
	pathInspiration  = "/v1/shopping/flight-destinations"
	pathLocations    = "/v1/reference-data/locations"
	pathHotelsByCity = "/v1/reference-data/locations/hotels/by-city"
	pathHotelOffers  = "/v3/shopping/hotel-offers"
	pathActivities   = "/v1/shopping/activities"
)

// Client talks to Amadeus. Safe for concurrent use.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	maxHubs      int

	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time
	newID   func() string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithBaseURL points the client at a different host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithClock replaces time.Now for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithIDSource replaces the UUID source used for demo deals.
func WithIDSource(fn func() string) Option {
	return func(c *Client) { c.newID = fn }
}

// WithLimiter replaces the outbound rate limiter.
func WithLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// NewClient creates a client from the Amadeus config section.
func NewClient(cfg config.AmadeusConfig, opts ...Option) *Client {
	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 10
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	maxHubs := cfg.MaxHubs
	if maxHubs < 1 {
		maxHubs = 2
	}

	c := &Client{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      cfg.URL(),
		maxHubs:      maxHubs,
		http:         &http.Client{Timeout: cfg.GetTimeout()},
		limiter:      rate.NewLimiter(rate.Limit(rps), burst),
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether credentials are configured. This is a credential
// check only; remote failures do not flip it.
func (c *Client) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.clientID != "" && c.clientSecret != ""
}

// statusError is a non-2xx response with its body kept for error details.
type statusError struct {
	Status int
	Body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("amadeus returned %d: %s", e.Status, truncate(string(e.Body), 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// getJSON performs an authenticated GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, token, path string, q url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.do(req, out)
}

// postJSON performs an authenticated JSON POST and decodes the response into out.
func (c *Client) postJSON(ctx context.Context, token, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	logging.FlightsDebug("%s %s -> %d (%v)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{Status: resp.StatusCode, Body: body}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL.Path, err)
	}
	return nil
}
