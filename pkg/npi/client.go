// Package npi queries the CMS NPI Registry (no authentication required).
package npi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://npiregistry.cms.hhs.gov/api"
	apiVersion     = "2.1"
	defaultLimit   = 10
)

// Client searches the NPI Registry.
type Client interface {
	Search(ctx context.Context, q Query) (*SearchResult, error)
}

// Query selects individual providers by name with optional filters.
type Query struct {
	FirstName string
	LastName  string
	// State is applied only when it is a two-letter code.
	State string
	// TaxonomyDescription filters by specialty text, e.g. "Dermatology".
	TaxonomyDescription string
}

// SearchResult is a parsed registry response.
type SearchResult struct {
	ResultCount int
	Providers   []Provider
}

// Provider is one registry record.
type Provider struct {
	Number     int64      `json:"number"`
	Basic      Basic      `json:"basic"`
	Taxonomies []Taxonomy `json:"taxonomies"`
	Addresses  []Address  `json:"addresses"`
}

// Basic holds the provider's name and status.
type Basic struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Credential string `json:"credential"`
	Status     string `json:"status"`
}

// Taxonomy is a specialty classification.
type Taxonomy struct {
	Desc    string `json:"desc"`
	Code    string `json:"code"`
	Primary bool   `json:"primary"`
}

// Address is a mailing or practice location.
type Address struct {
	Purpose    string `json:"address_purpose"`
	Address1   string `json:"address_1"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Phone      string `json:"telephone_number"`
}

// PrimaryTaxonomy returns the taxonomy flagged primary, else the first one.
func (p Provider) PrimaryTaxonomy() (Taxonomy, bool) {
	for _, t := range p.Taxonomies {
		if t.Primary {
			return t, true
		}
	}
	if len(p.Taxonomies) > 0 {
		return p.Taxonomies[0], true
	}
	return Taxonomy{}, false
}

// PracticeAddress returns the LOCATION address, else the first one.
func (p Provider) PracticeAddress() (Address, bool) {
	for _, a := range p.Addresses {
		if a.Purpose == "LOCATION" {
			return a, true
		}
	}
	if len(p.Addresses) > 0 {
		return p.Addresses[0], true
	}
	return Address{}, false
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

// WithLimit sets the maximum number of records per query.
func WithLimit(n int) Option {
	return func(c *httpClient) {
		if n > 0 {
			c.limit = n
		}
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
	baseURL string
	limit   int
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an NPI Registry client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		limit:   defaultLimit,
		http:    &http.Client{Timeout: 20 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Search(ctx context.Context, q Query) (*SearchResult, error) {
	params := url.Values{}
	params.Set("version", apiVersion)
	params.Set("first_name", q.FirstName)
	params.Set("last_name", q.LastName)
	params.Set("enumeration_type", "NPI-1")
	params.Set("limit", strconv.Itoa(c.limit))
	if len(q.State) == 2 {
		params.Set("state", strings.ToUpper(q.State))
	}
	if q.TaxonomyDescription != "" {
		params.Set("taxonomy_description", q.TaxonomyDescription)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "npi: rate limit wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "npi: create request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "npi: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "npi: read response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("npi: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	return parseResponse(body)
}

type rawResponse struct {
	ResultCount int               `json:"result_count"`
	Results     []json.RawMessage `json:"results"`
	Errors      []struct {
		Description string `json:"description"`
	} `json:"Errors"`
}

func parseResponse(body []byte) (*SearchResult, error) {
	var raw rawResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "npi: unmarshal response")
	}
	if len(raw.Errors) > 0 {
		return nil, eris.Errorf("npi: query rejected: %s", raw.Errors[0].Description)
	}

	out := &SearchResult{
		ResultCount: raw.ResultCount,
		Providers:   make([]Provider, 0, len(raw.Results)),
	}
	for _, r := range raw.Results {
		p, err := parseProvider(r)
		if err != nil {
			zap.L().Warn("npi: dropping malformed record", zap.Error(err))
			continue
		}
		out.Providers = append(out.Providers, p)
	}
	return out, nil
}

// parseProvider decodes one record. The registry has served the number both
// as a JSON number and as a string.
func parseProvider(raw json.RawMessage) (Provider, error) {
	var wire struct {
		Provider
		Number json.RawMessage `json:"number"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Provider{}, eris.Wrap(err, "npi: unmarshal record")
	}

	p := wire.Provider
	num := strings.Trim(string(wire.Number), `"`)
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return Provider{}, eris.Wrapf(err, "npi: record number %q", num)
	}
	p.Number = n
	return p, nil
}
