package npi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"result_count": 3,
	"results": [
		{
			"number": 1234567890,
			"basic": {"first_name": "JANE", "last_name": "IDRISS", "credential": "M.D.", "status": "A"},
			"taxonomies": [
				{"desc": "Internal Medicine", "code": "207R00000X", "primary": false},
				{"desc": "Dermatology", "code": "207N00000X", "primary": true}
			],
			"addresses": [
				{"address_purpose": "MAILING", "address_1": "PO Box 1", "city": "ENCINO", "state": "CA", "postal_code": "91316"},
				{"address_purpose": "LOCATION", "address_1": "9001 Wilshire Blvd", "city": "BEVERLY HILLS", "state": "CA", "postal_code": "90211", "telephone_number": "310-555-0100"}
			]
		},
		{
			"number": "1987654321",
			"basic": {"first_name": "JANE", "last_name": "IDRIS"}
		},
		{
			"number": "not-a-number",
			"basic": {"first_name": "BROKEN"}
		}
	]
}`

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "2.1", q.Get("version"))
		assert.Equal(t, "Jane", q.Get("first_name"))
		assert.Equal(t, "Idriss", q.Get("last_name"))
		assert.Equal(t, "NPI-1", q.Get("enumeration_type"))
		assert.Equal(t, "10", q.Get("limit"))
		assert.Equal(t, "CA", q.Get("state"))
		assert.Equal(t, "Dermatology", q.Get("taxonomy_description"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	res, err := client.Search(context.Background(), Query{
		FirstName:           "Jane",
		LastName:            "Idriss",
		State:               "ca",
		TaxonomyDescription: "Dermatology",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ResultCount)
	require.Len(t, res.Providers, 2)

	p := res.Providers[0]
	assert.Equal(t, int64(1234567890), p.Number)
	assert.Equal(t, "IDRISS", p.Basic.LastName)

	tax, ok := p.PrimaryTaxonomy()
	require.True(t, ok)
	assert.Equal(t, "Dermatology", tax.Desc)
	assert.True(t, tax.Primary)

	addr, ok := p.PracticeAddress()
	require.True(t, ok)
	assert.Equal(t, "BEVERLY HILLS", addr.City)
	assert.Equal(t, "310-555-0100", addr.Phone)

	sparse := res.Providers[1]
	assert.Equal(t, int64(1987654321), sparse.Number)
	_, ok = sparse.PrimaryTaxonomy()
	assert.False(t, ok)
	_, ok = sparse.PracticeAddress()
	assert.False(t, ok)
}

func TestSearch_OmitsOptionalFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.False(t, q.Has("state"))
		assert.False(t, q.Has("taxonomy_description"))
		assert.Equal(t, "3", q.Get("limit"))
		_, _ = w.Write([]byte(`{"result_count": 0, "results": []}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithLimit(3))
	res, err := client.Search(context.Background(), Query{FirstName: "A", LastName: "B", State: "California"})
	require.NoError(t, err)
	assert.Zero(t, res.ResultCount)
	assert.Empty(t, res.Providers)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "down", wantErr: "unexpected status 500"},
		{name: "malformed", status: http.StatusOK, body: "{nope", wantErr: "unmarshal response"},
		{name: "rejected query", status: http.StatusOK, body: `{"Errors":[{"description":"No valid search criteria"}]}`, wantErr: "No valid search criteria"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient(WithBaseURL(srv.URL))
			res, err := client.Search(context.Background(), Query{FirstName: "A", LastName: "B"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, res)
		})
	}
}

func TestPrimaryTaxonomy_FallsBackToFirst(t *testing.T) {
	p := Provider{Taxonomies: []Taxonomy{{Desc: "Pediatrics"}, {Desc: "Dermatology"}}}
	tax, ok := p.PrimaryTaxonomy()
	require.True(t, ok)
	assert.Equal(t, "Pediatrics", tax.Desc)
}
