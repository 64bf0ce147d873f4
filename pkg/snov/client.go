// Package snov is a client for the Snov.io email finder. It authenticates
// with OAuth client credentials and caches the access token.
package snov

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/derm-scout/internal/resilience"
)

const (
	defaultBaseURL = "https://api.snov.io/v1"

	// tokenTTL is shorter than Snov's one hour token lifetime.
	tokenTTL = 50 * time.Minute
)

// Client finds professional email addresses by domain and name.
type Client interface {
	// FindEmail returns nil when Snov has no address for the person.
	FindEmail(ctx context.Context, domain, firstName, lastName string) (*Email, error)
}

// Email is a Snov email-finder hit.
type Email struct {
	Address string
	Status  string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit caps requests per second. Zero disables the limiter.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// WithNow sets the clock used for token expiry.
func WithNow(now func() time.Time) Option {
	return func(c *httpClient) {
		c.now = now
	}
}

type httpClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	http         *http.Client
	limiter      *rate.Limiter
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewClient creates a Snov client.
func NewClient(clientID, clientSecret string, opts ...Option) Client {
	c := &httpClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		http:         &http.Client{Timeout: 20 * time.Second},
		now:          time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := c.post(ctx, "/oauth/access_token", map[string]string{
		"grant_type":    "client_credentials",
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
	}, &out)
	if err != nil {
		return "", eris.Wrap(err, "snov: oauth")
	}
	if out.AccessToken == "" {
		return "", eris.New("snov: oauth returned no access_token")
	}

	c.token = out.AccessToken
	c.expiresAt = c.now().Add(tokenTTL)
	return c.token, nil
}

func (c *httpClient) FindEmail(ctx context.Context, domain, firstName, lastName string) (*Email, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return nil, eris.Wrap(resilience.ErrMissingCredentials, "snov: client credentials")
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var out struct {
		Data *struct {
			Emails []struct {
				Email  string `json:"email"`
				Status string `json:"status"`
			} `json:"emails"`
		} `json:"data"`
	}
	err = c.post(ctx, "/get-emails-from-names", map[string]string{
		"access_token": token,
		"firstName":    firstName,
		"lastName":     lastName,
		"domain":       domain,
	}, &out)
	if err != nil {
		return nil, err
	}

	if out.Data == nil || len(out.Data.Emails) == 0 || out.Data.Emails[0].Email == "" {
		return nil, nil
	}
	return &Email{Address: out.Data.Emails[0].Email, Status: out.Data.Emails[0].Status}, nil
}

func (c *httpClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "snov: marshal request")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return eris.Wrap(err, "snov: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "snov: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "snov: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "snov: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("snov: unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return eris.Wrap(err, "snov: unmarshal response")
	}
	return nil
}
