package mock

import (
	"context"
	"io"

	"github.com/fwojciec/mdstream"
)

var _ mdstream.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of mdstream.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (io.ReadCloser, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
