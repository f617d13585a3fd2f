package flights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flytz/internal/logging"
)

// ErrNoCredentials is returned by accessToken when the client runs in demo mode.
var ErrNoCredentials = errors.New("amadeus credentials not configured")

// tokenSafetyMargin is subtracted from expires_in so a token is never used
// right at its expiry.
const tokenSafetyMargin = 60 * time.Second

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// accessToken returns a cached token or fetches a new one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	id, secret := c.clientID, c.clientSecret
	if id == "" || secret == "" {
		c.mu.Unlock()
		return "", ErrNoCredentials
	}
	if c.token != "" && c.now().Before(c.expiry) {
		tok := c.token
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	logging.FlightsDebug("Fetching Amadeus access token")
	tr, err := c.fetchToken(ctx, id, secret)
	if err != nil {
		return "", err
	}
	c.storeToken(tr)
	return tr.AccessToken, nil
}

// tokenOrDemo returns a token, or "" when the caller should serve demo data.
func (c *Client) tokenOrDemo(ctx context.Context, op string) string {
	tok, err := c.accessToken(ctx)
	if err == nil {
		return tok
	}
	if errors.Is(err, ErrNoCredentials) {
		logging.FlightsDebug("%s: no Amadeus credentials, using demo data", op)
	} else {
		logging.FlightsWarn("%s: auth failed, using demo data: %v", op, err)
	}
	return ""
}

func (c *Client) storeToken(tr *tokenResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tr.AccessToken
	c.expiry = c.now().Add(time.Duration(tr.ExpiresIn)*time.Second - tokenSafetyMargin)
}

func (c *Client) fetchToken(ctx context.Context, id, secret string) (*tokenResponse, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", id)
	form.Set("client_secret", secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pathToken, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token request failed (%d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}
	return &tr, nil
}

// ValidateCredentials checks an id/secret pair against the token endpoint.
// On success the token is cached so the next call reuses it.
func (c *Client) ValidateCredentials(ctx context.Context, id, secret string) bool {
	tr, err := c.fetchToken(ctx, id, secret)
	if err != nil {
		logging.FlightsWarn("Credential validation failed: %v", err)
		return false
	}
	c.mu.Lock()
	c.clientID, c.clientSecret = id, secret
	c.mu.Unlock()
	c.storeToken(tr)
	logging.Flights("Amadeus credentials validated")
	return true
}
