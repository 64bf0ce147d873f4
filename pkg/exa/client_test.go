package exa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/derm-scout/internal/resilience"
)

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]any
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "Jane Idriss dermatology practice contact", body["query"])
		assert.Equal(t, float64(5), body["numResults"])
		assert.Equal(t, true, body["useAutoprompt"])
		assert.Equal(t, []any{"yelp.com"}, body["excludeDomains"])
		assert.NotContains(t, body, "includeDomains")
		contents := body["contents"].(map[string]any)
		assert.Equal(t, float64(1000), contents["text"].(map[string]any)["maxCharacters"])
		assert.Equal(t, "email", contents["highlights"].(map[string]any)["query"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [
			{"url": "https://idrissderm.com/contact", "title": "Contact", "text": "Call 310-555-0100", "highlights": ["office@idrissderm.com"]},
			{"url": "https://yelp.com/biz/x", "title": "Yelp"}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(100))
	resp, err := client.Search(context.Background(), SearchRequest{
		Query:          "Jane Idriss dermatology practice contact",
		UseAutoprompt:  true,
		ExcludeDomains: []string{"yelp.com"},
		Contents: &Contents{
			Text:       &TextOptions{MaxCharacters: 1000},
			Highlights: &HighlightsOptions{Query: "email", MaxCharacters: 300},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "https://idrissderm.com/contact", resp.Results[0].URL)
	assert.Equal(t, []string{"office@idrissderm.com"}, resp.Results[0].Highlights)
	assert.Empty(t, resp.Results[1].Text)
}

func TestSearch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantErr: "unexpected status 401"},
		{name: "rate limited", status: http.StatusTooManyRequests, body: `{}`, wantErr: "unexpected status 429"},
		{name: "malformed", status: http.StatusOK, body: `[`, wantErr: "unmarshal response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			client := NewClient("test-key", WithBaseURL(srv.URL))
			resp, err := client.Search(context.Background(), SearchRequest{Query: "q"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Nil(t, resp)
		})
	}
}

func TestSearch_MissingKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Search(context.Background(), SearchRequest{Query: "q"})
	require.Error(t, err)
	assert.True(t, resilience.IsConfigFault(err))
}
