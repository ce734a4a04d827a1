package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tenderops/console-gateway/internal/apierr"
	"github.com/tenderops/console-gateway/internal/credentials"
	"github.com/tenderops/console-gateway/internal/session"
)

func newTestClient(t *testing.T, backendURL string) (*Client, credentials.Store) {
	t.Helper()
	store := credentials.NewMemoryStore()
	c := New(Config{
		BaseURL: backendURL,
		Timeout: 5 * time.Second,
	}, store, zerolog.Nop())
	return c, store
}

func TestDo_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "tok-123", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDo_StripsStoredBearerPrefix(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "Bearer tok-123", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestDo_RefreshesAndRetriesOn401(t *testing.T) {
	var refreshes int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh-token"})
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "stale-token", credentials.Options{})
	store.Set(credentials.RefreshToken, "refresh-token", credentials.Options{})

	data, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	got, ok := store.Get(credentials.AccessToken)
	require.True(t, ok)
	assert.Equal(t, "fresh-token", got)
}

func TestDo_RetryBudgetIsBounded(t *testing.T) {
	var attempts, refreshes int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "still-rejected"})
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "t", credentials.Options{})
	store.Set(credentials.RefreshToken, "r", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	// Initial attempt plus exactly three refresh-and-retry cycles.
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(3), atomic.LoadInt32(&refreshes))
}

func TestDo_RetryBudgetIsConfigurable(t *testing.T) {
	var attempts, refreshes int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		json.NewEncoder(w).Encode(map[string]string{"access_token": "still-rejected"})
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := credentials.NewMemoryStore()
	c := New(Config{
		BaseURL:    srv.URL,
		Timeout:    5 * time.Second,
		MaxRetries: 1,
	}, store, zerolog.Nop())
	store.Set(credentials.AccessToken, "t", credentials.Options{})
	store.Set(credentials.RefreshToken, "r", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.Error(t, err)

	// A budget of one means a single refresh-and-retry cycle.
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
}

func TestDo_RefreshFailureClearsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"refresh token expired"}`))
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "t", credentials.Options{})
	store.Set(credentials.RefreshToken, "r", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apierr.StatusOf(err))

	_, ok := store.Get(credentials.AccessToken)
	assert.False(t, ok, "access token must be cleared after a failed refresh")
	_, ok = store.Get(credentials.RefreshToken)
	assert.False(t, ok, "refresh token must be cleared after a failed refresh")
}

func TestDo_MissingRefreshCredentialFailsImmediately(t *testing.T) {
	var refreshCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/user/refresh", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
	})
	mux.HandleFunc("/things", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, store := newTestClient(t, srv.URL)
	store.Set(credentials.AccessToken, "t", credentials.Options{})

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	assert.ErrorIs(t, err, session.ErrNoRefreshCredential)
	assert.Equal(t, int32(0), atomic.LoadInt32(&refreshCalls), "no backend call without a refresh token")
}

func TestDo_NonAuthErrorsAreTerminal(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such auction"}`))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, apierr.StatusOf(err))
	assert.Contains(t, err.Error(), "no such auction")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx must not be retried")
}

func TestDo_ServerErrorsAreTerminal(t *testing.T) {
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)

	_, err := c.Do(context.Background(), http.MethodGet, "/things", nil, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, apierr.StatusOf(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestDownload_ReturnsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="protocol.pdf"`)
		w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL)

	data, header, err := c.Download(context.Background(), http.MethodGet, "/doc", nil)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "application/pdf", header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="protocol.pdf"`, header.Get("Content-Disposition"))
}

func TestSend_AbsoluteURLBypassesBaseURL(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"from":"other"}`))
	}))
	defer other.Close()

	c, _ := newTestClient(t, "http://base.invalid")

	data, err := c.Do(context.Background(), http.MethodGet, other.URL+"/elsewhere", nil, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"from":"other"}`, string(data))
}
