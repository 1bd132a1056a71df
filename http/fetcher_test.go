package http_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/mdstream"
	mdhttp "github.com/fwojciec/mdstream/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, body io.ReadCloser) string {
	t.Helper()

	defer body.Close()
	b, err := io.ReadAll(body)
	require.NoError(t, err)
	return string(b)
}

func TestFetcher_Fetch(t *testing.T) {
	t.Parallel()

	t.Run("returns HTML body from server", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>Hello World</body></html>"))
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher()
		defer fetcher.Close()

		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "<html><body>Hello World</body></html>", readAll(t, body))
	})

	t.Run("streams the body before the response is complete", func(t *testing.T) {
		t.Parallel()

		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<h1>First</h1>"))
			w.(http.Flusher).Flush()
			<-release
			_, _ = w.Write([]byte("<p>Second</p>"))
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher()
		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		buf := make([]byte, len("<h1>First</h1>"))
		_, err = io.ReadFull(body, buf)
		require.NoError(t, err)
		assert.Equal(t, "<h1>First</h1>", string(buf))

		close(release)
		assert.Equal(t, "<p>Second</p>", readAll(t, body))
	})

	t.Run("sets user agent", func(t *testing.T) {
		t.Parallel()

		var got atomic.Value
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got.Store(r.UserAgent())
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher(mdhttp.WithUserAgent("test-agent/1.0"))
		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)
		readAll(t, body)

		assert.Equal(t, "test-agent/1.0", got.Load())
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher(mdhttp.WithTimeout(10 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), server.URL)
		require.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher()
		defer fetcher.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := fetcher.Fetch(ctx, server.URL)
		require.Error(t, err)
	})

	t.Run("rejects invalid URL", func(t *testing.T) {
		t.Parallel()

		_, err := mdhttp.NewFetcher().Fetch(context.Background(), "not a url")
		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		fetcher := mdhttp.NewFetcher(mdhttp.WithTimeout(100 * time.Millisecond))
		defer fetcher.Close()

		_, err := fetcher.Fetch(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
	})

	t.Run("returns not found for 404", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		_, err := mdhttp.NewFetcher().Fetch(context.Background(), server.URL)
		require.Error(t, err)
		assert.Equal(t, mdstream.ENOTFOUND, mdstream.ErrorCode(err))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("retries server errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte("<p>ok</p>"))
		}))
		defer server.Close()

		var retried []int
		fetcher := mdhttp.NewFetcher(
			mdhttp.WithRetryDelays(time.Millisecond, time.Millisecond, time.Millisecond),
			mdhttp.WithRetryHook(func(url string, attempt int, err error) {
				retried = append(retried, attempt)
			}),
		)
		body, err := fetcher.Fetch(context.Background(), server.URL)
		require.NoError(t, err)

		assert.Equal(t, "<p>ok</p>", readAll(t, body))
		assert.Equal(t, int32(3), calls.Load())
		assert.Equal(t, []int{2, 3}, retried)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		t.Parallel()

		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher(mdhttp.WithRetryDelays(time.Millisecond))
		_, err := fetcher.Fetch(context.Background(), server.URL)

		var se *mdhttp.StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, http.StatusForbidden, se.Code)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("waits for the domain rate limiter", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		defer server.Close()

		fetcher := mdhttp.NewFetcher(mdhttp.WithRateLimiter(mdhttp.NewDomainLimiter(10)))
		start := time.Now()
		for range 2 {
			body, err := fetcher.Fetch(context.Background(), server.URL)
			require.NoError(t, err)
			readAll(t, body)
		}
		assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
	})
}

// Compile-time verification that Fetcher implements mdstream.Fetcher
var _ mdstream.Fetcher = (*mdhttp.Fetcher)(nil)
