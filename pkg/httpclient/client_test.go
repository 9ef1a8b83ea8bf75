package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathercast/pkg/httpcache"
	"weathercast/pkg/observe"
)

// flakyServer fails the first `failures` requests with status.
func flakyServer(t *testing.T, failures int32, status int) (*httptest.Server, *int32) {
	t.Helper()

	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n <= failures {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func testLogger() *observe.Logger {
	return observe.NewZapLogger("test-app", io.Discard)
}

func TestNew_RetriesUntilSuccess(t *testing.T) {
	srv, hits := flakyServer(t, 2, http.StatusInternalServerError)

	client := New(Config{RetryMax: 5, BackoffFactor: 0}, http.DefaultTransport, testLogger())

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestNew_ReturnsLastResponseWhenRetriesExhausted(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusBadGateway)

	client := New(Config{RetryMax: 2, BackoffFactor: 0}, http.DefaultTransport, nil)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(hits))
}

func TestNew_DoesNotRetryClientErrors(t *testing.T) {
	srv, hits := flakyServer(t, 100, http.StatusBadRequest)

	client := New(Config{RetryMax: 5, BackoffFactor: 0}, http.DefaultTransport, nil)

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestNew_OverCacheTransport(t *testing.T) {
	srv, hits := flakyServer(t, 1, http.StatusServiceUnavailable)

	cache, err := httpcache.Open(filepath.Join(t.TempDir(), "cache.sqlite"), time.Hour, nil)
	require.NoError(t, err)
	defer cache.Close()

	client := New(Config{RetryMax: 3, BackoffFactor: 0}, cache, nil)

	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		assert.Equal(t, `{"ok":true}`, string(body))
	}

	// one 503, one 200, then cache hits
	assert.Equal(t, int32(2), atomic.LoadInt32(hits))
}

func TestFactorBackoff(t *testing.T) {
	backoff := FactorBackoff(0.2)

	tests := []struct {
		name    string
		attempt int
		max     time.Duration
		resp    *http.Response
		want    time.Duration
	}{
		{name: "first retry", attempt: 0, max: 30 * time.Second, want: 200 * time.Millisecond},
		{name: "second retry", attempt: 1, max: 30 * time.Second, want: 400 * time.Millisecond},
		{name: "fourth retry", attempt: 3, max: 30 * time.Second, want: 1600 * time.Millisecond},
		{name: "capped", attempt: 10, max: 5 * time.Second, want: 5 * time.Second},
		{
			name:    "retry-after on 429",
			attempt: 0,
			max:     30 * time.Second,
			resp:    &http.Response{StatusCode: http.StatusTooManyRequests, Header: http.Header{"Retry-After": []string{"3"}}},
			want:    3 * time.Second,
		},
		{
			name:    "retry-after ignored on 500",
			attempt: 0,
			max:     30 * time.Second,
			resp:    &http.Response{StatusCode: http.StatusInternalServerError, Header: http.Header{"Retry-After": []string{"3"}}},
			want:    200 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, backoff(0, tt.max, tt.attempt, tt.resp))
		})
	}
}
