// Package hunter is a client for the Hunter.io email finder.
package hunter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/derm-scout/internal/resilience"
)

const defaultBaseURL = "https://api.hunter.io/v2"

// Client finds professional email addresses by domain and name.
type Client interface {
	// FindEmail returns nil when Hunter has no address for the person.
	FindEmail(ctx context.Context, domain, firstName, lastName string) (*Email, error)
}

// Email is a Hunter email-finder hit.
type Email struct {
	Address  string
	Score    int
	Position string
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

type httpClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Hunter client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type finderResponse struct {
	Data *struct {
		Email    string `json:"email"`
		Score    int    `json:"score"`
		Position string `json:"position"`
	} `json:"data"`
}

func (c *httpClient) FindEmail(ctx context.Context, domain, firstName, lastName string) (*Email, error) {
	if c.apiKey == "" {
		return nil, eris.Wrap(resilience.ErrMissingCredentials, "hunter: api key")
	}

	params := url.Values{}
	params.Set("domain", domain)
	params.Set("first_name", firstName)
	params.Set("last_name", lastName)
	params.Set("api_key", c.apiKey)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "hunter: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/email-finder?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "hunter: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("hunter: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result finderResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "hunter: unmarshal response")
	}
	if result.Data == nil || result.Data.Email == "" {
		return nil, nil
	}

	return &Email{
		Address:  result.Data.Email,
		Score:    result.Data.Score,
		Position: result.Data.Position,
	}, nil
}
