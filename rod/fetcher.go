// Package rod provides a browser-rendered implementation of mdstream.Fetcher
// for pages that build their content with JavaScript.
package rod

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/fwojciec/mdstream"
	"github.com/go-rod/rod/lib/proto"
)

// DefaultFetchTimeout bounds one page load when no other deadline applies.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements mdstream.Fetcher at compile time.
var _ mdstream.Fetcher = (*Fetcher)(nil)

// serializeJS returns the rendered document including open shadow roots.
// Browsers without Element.getHTML fall back to outerHTML.
const serializeJS = `() => {
	const root = document.documentElement;
	if (typeof root.getHTML !== 'function') {
		return root.outerHTML;
	}
	const roots = [];
	const walk = (node) => {
		for (const el of node.querySelectorAll('*')) {
			if (el.shadowRoot) {
				roots.push(el.shadowRoot);
				walk(el.shadowRoot);
			}
		}
	};
	walk(document);
	return '<html>' + root.getHTML({shadowRoots: roots}) + '</html>';
}`

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The page is rendered completely before its HTML is returned, so the body
// is an in-memory reader. Fetcher is safe for concurrent use by multiple
// goroutines.
type Fetcher struct {
	manager  *BrowserManager
	timeout  time.Duration
	maxPages int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithFetchTimeout sets the timeout for loading one page.
func WithFetchTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithPageLimit sets how many pages are rendered before the browser is
// recycled.
func WithPageLimit(n int64) Option {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(f)
	}

	m, err := NewBrowserManager(WithMaxPages(f.maxPages))
	if err != nil {
		return nil, err
	}
	f.manager = m
	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	browser, err := f.manager.Acquire()
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, err
	}
	defer page.Close()

	page = page.Context(ctx)
	if err := page.Navigate(url); err != nil {
		return nil, err
	}
	if err := page.WaitLoad(); err != nil {
		return nil, err
	}

	res, err := page.Eval(serializeJS)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(res.Value.Str())), nil
}

// LauncherPID returns the process ID of the current browser launcher.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
