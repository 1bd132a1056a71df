package slog

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/mdstream"
)

// Ensure LoggingFetcher implements mdstream.Fetcher.
var _ mdstream.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging. A successful fetch is logged
// when its body is closed, so the entry carries the number of bytes read.
type LoggingFetcher struct {
	next   mdstream.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next mdstream.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	begin := time.Now()
	body, err := f.next.Fetch(ctx, url)
	if err != nil {
		f.logger.Info("fetch",
			"url", url,
			"duration", time.Since(begin),
			"err", err,
		)
		return nil, err
	}
	return &loggedBody{ReadCloser: body, url: url, begin: begin, logger: f.logger}, nil
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

type loggedBody struct {
	io.ReadCloser
	url    string
	begin  time.Time
	logger *slog.Logger
	bytes  int
	err    error
	closed bool
}

func (b *loggedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.bytes += n
	if err != nil && err != io.EOF {
		b.err = err
	}
	return n, err
}

func (b *loggedBody) Close() error {
	err := b.ReadCloser.Close()
	if !b.closed {
		b.closed = true
		b.logger.Info("fetch",
			"url", b.url,
			"bytes", b.bytes,
			"duration", time.Since(b.begin),
			"err", b.err,
		)
	}
	return err
}
