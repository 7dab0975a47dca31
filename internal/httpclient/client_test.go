package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer creates a new test server with keep-alives disabled.
// This prevents flaky tests when running in parallel, as closing a server
// with keep-alives enabled can affect other tests sharing the HTTP transport.
func newTestServer(handler http.Handler) *httptest.Server {
	server := httptest.NewServer(handler)
	server.Config.SetKeepAlivesEnabled(false)
	return server
}

func TestGetSuccess(t *testing.T) {
	t.Parallel()
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		_, _ = w.Write([]byte(`[{"id":"x"}]`))
	}))
	defer ts.Close()

	client := New(3, 5*time.Second)
	body, err := client.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"x"}]`, string(body))
}

func TestGetRetriesServerErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := New(3, 5*time.Second)
	body, err := client.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(body))
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetRetriesTooManyRequests(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	client := New(3, 5*time.Second)
	_, err := client.Get(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no such collection"}`))
	}))
	defer ts.Close()

	client := New(3, 5*time.Second)
	_, err := client.Get(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "no such collection")
}

func TestGetExhaustsAttempts(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	client := New(2, 5*time.Second)
	_, err := client.Get(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(2), calls.Load())

	// The last upstream error is what surfaces.
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestGetTruncatesErrorBody(t *testing.T) {
	t.Parallel()
	long := make([]byte, errorBodyLimit*3)
	for i := range long {
		long[i] = 'a'
	}
	ts := newTestServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write(long)
	}))
	defer ts.Close()

	client := New(1, 5*time.Second)
	_, err := client.Get(context.Background(), ts.URL)
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Len(t, httpErr.Body, errorBodyLimit)
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	client := New(0, 0)
	assert.Equal(t, uint(DefaultMaxAttempts), client.maxAttempts)
	assert.Equal(t, DefaultAttemptTimeout, client.attemptTimeout)
}
