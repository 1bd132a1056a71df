package mdstream

import (
	"context"
	"io"
)

// Fetcher retrieves HTML from URLs.
type Fetcher interface {
	// Fetch returns the HTML body of the page at url. The caller must close
	// the returned reader. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)

	// Close releases resources held by the fetcher.
	Close() error
}
