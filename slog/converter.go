package slog

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/fwojciec/mdstream"
)

// Ensure the logging converters implement the domain interfaces.
var (
	_ mdstream.Converter       = (*LoggingConverter)(nil)
	_ mdstream.StreamConverter = (*LoggingStreamConverter)(nil)
)

// LoggingConverter wraps a Converter with logging.
type LoggingConverter struct {
	next   mdstream.Converter
	logger *slog.Logger
}

// NewLoggingConverter creates a new LoggingConverter.
func NewLoggingConverter(next mdstream.Converter, logger *slog.Logger) *LoggingConverter {
	return &LoggingConverter{next: next, logger: logger}
}

// Convert delegates to the wrapped converter and logs the operation.
func (c *LoggingConverter) Convert(html string) (md string, err error) {
	defer func(begin time.Time) {
		c.logger.Info("convert",
			"bytes_in", len(html),
			"bytes_out", len(md),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Convert(html)
}

// LoggingStreamConverter wraps a StreamConverter with logging. One entry is
// written when the sequence ends.
type LoggingStreamConverter struct {
	next   mdstream.StreamConverter
	logger *slog.Logger
}

// NewLoggingStreamConverter creates a new LoggingStreamConverter.
func NewLoggingStreamConverter(next mdstream.StreamConverter, logger *slog.Logger) *LoggingStreamConverter {
	return &LoggingStreamConverter{next: next, logger: logger}
}

// ConvertStream delegates to the wrapped converter and logs the stream.
func (c *LoggingStreamConverter) ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var (
			chunks, bytes int
			err           error
		)
		defer func(begin time.Time) {
			c.logger.Info("convert stream",
				"chunks", chunks,
				"bytes_out", bytes,
				"duration", time.Since(begin),
				"err", err,
			)
		}(time.Now())

		for md, e := range c.next.ConvertStream(ctx, r) {
			if e != nil {
				err = e
			} else {
				chunks++
				bytes += len(md)
			}
			if !yield(md, e) {
				return
			}
		}
	}
}
