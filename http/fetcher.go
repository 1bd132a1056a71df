// Package http provides an HTTP-based implementation of mdstream.Fetcher
// that hands the response body to the converter as it arrives.
package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/fwojciec/mdstream"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout (10s).
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements mdstream.Fetcher at compile time.
var _ mdstream.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML from URLs using HTTP requests. It does not execute
// JavaScript and is suitable for static pages only.
type Fetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	limiter   *DomainLimiter
	delays    []time.Duration
	onRetry   RetryFunc
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for one request, including reading the body.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithRateLimiter makes every request wait for its domain's limiter.
func WithRateLimiter(l *DomainLimiter) Option {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithRetryDelays enables retries of failed requests, waiting the given
// delays between attempts. Only network errors and 429 or 5xx responses are
// retried.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(f *Fetcher) {
		f.delays = delays
	}
}

// WithRetryHook sets a function called before each retry.
func WithRetryHook(fn RetryFunc) Option {
	return func(f *Fetcher) {
		f.onRetry = fn
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: "mdstream",
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch requests the URL and returns the response body unread. The caller
// must close it.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, mdstream.Errorf(mdstream.EINVALID, "invalid URL %q", rawURL)
	}

	var body io.ReadCloser
	err = Retry(ctx, f.delays, func(ctx context.Context) error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx, u.Hostname()); err != nil {
				return err
			}
		}
		var err error
		body, err = f.get(ctx, rawURL)
		return err
	}, func(attempt int, err error) {
		if f.onRetry != nil {
			f.onRetry(rawURL, attempt, err)
		}
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, mdstream.Errorf(mdstream.ENOTFOUND, "HTTP %d for %s", resp.StatusCode, rawURL)
		}
		return nil, &StatusError{Code: resp.StatusCode, URL: rawURL}
	}
	return resp.Body, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// StatusError reports a response status other than 200 or 404.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.Code, e.URL)
}

// Temporary reports whether the request may succeed if repeated.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// retryable reports whether err is worth another attempt.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	var me *mdstream.Error
	return !errors.As(err, &me)
}
