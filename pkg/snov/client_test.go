package snov

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/derm-scout/internal/resilience"
)

type fakeSnov struct {
	tokenCalls  int32
	lookupCalls int32
	emails      string
	lookupCode  int
}

func (f *fakeSnov) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/oauth/access_token":
			n := atomic.AddInt32(&f.tokenCalls, 1)
			assert.Equal(t, "client_credentials", body["grant_type"])
			assert.Equal(t, "id", body["client_id"])
			assert.Equal(t, "secret", body["client_secret"])
			_, _ = w.Write([]byte(`{"access_token": "tok-` + string(rune('0'+n)) + `"}`))
		case "/get-emails-from-names":
			atomic.AddInt32(&f.lookupCalls, 1)
			assert.NotEmpty(t, body["access_token"])
			assert.Equal(t, "Jane", body["firstName"])
			assert.Equal(t, "Idriss", body["lastName"])
			assert.Equal(t, "idrissderm.com", body["domain"])
			if f.lookupCode != 0 {
				w.WriteHeader(f.lookupCode)
			}
			_, _ = w.Write([]byte(f.emails))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFindEmail(t *testing.T) {
	fake := &fakeSnov{emails: `{"data": {"emails": [{"email": "jane@idrissderm.com", "status": "valid"}, {"email": "j@idrissderm.com"}]}}`}
	srv := fake.server(t)

	client := NewClient("id", "secret", WithBaseURL(srv.URL))
	email, err := client.FindEmail(context.Background(), "idrissderm.com", "Jane", "Idriss")
	require.NoError(t, err)
	require.NotNil(t, email)
	assert.Equal(t, "jane@idrissderm.com", email.Address)
	assert.Equal(t, "valid", email.Status)
}

func TestFindEmail_NoEmails(t *testing.T) {
	for _, body := range []string{`{"data": {"emails": []}}`, `{}`, `{"data": {"emails": [{"email": ""}]}}`} {
		fake := &fakeSnov{emails: body}
		srv := fake.server(t)

		client := NewClient("id", "secret", WithBaseURL(srv.URL))
		email, err := client.FindEmail(context.Background(), "idrissderm.com", "Jane", "Idriss")
		require.NoError(t, err)
		assert.Nil(t, email, body)
	}
}

func TestFindEmail_TokenCached(t *testing.T) {
	fake := &fakeSnov{emails: `{}`}
	srv := fake.server(t)

	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	client := NewClient("id", "secret", WithBaseURL(srv.URL), WithNow(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		_, err := client.FindEmail(context.Background(), "idrissderm.com", "Jane", "Idriss")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&fake.tokenCalls))
	assert.Equal(t, int32(3), atomic.LoadInt32(&fake.lookupCalls))

	now = now.Add(51 * time.Minute)
	_, err := client.FindEmail(context.Background(), "idrissderm.com", "Jane", "Idriss")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&fake.tokenCalls))
}

func TestFindEmail_LookupError(t *testing.T) {
	fake := &fakeSnov{lookupCode: http.StatusPaymentRequired, emails: `{"error":"no credits"}`}
	srv := fake.server(t)

	client := NewClient("id", "secret", WithBaseURL(srv.URL))
	_, err := client.FindEmail(context.Background(), "idrissderm.com", "Jane", "Idriss")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 402")
}

func TestFindEmail_OAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("id", "secret", WithBaseURL(srv.URL))
	_, err := client.FindEmail(context.Background(), "d.com", "a", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "snov: oauth")
	assert.False(t, resilience.IsConfigFault(err))
}

func TestFindEmail_MissingCredentials(t *testing.T) {
	client := NewClient("id", "")
	_, err := client.FindEmail(context.Background(), "d.com", "a", "b")
	require.Error(t, err)
	assert.True(t, resilience.IsConfigFault(err))
}
