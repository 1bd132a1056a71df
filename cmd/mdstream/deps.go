package main

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/fwojciec/mdstream"
	mdhttp "github.com/fwojciec/mdstream/http"
	mdslog "github.com/fwojciec/mdstream/slog"
)

// Engine converts whole documents and streams alike.
type Engine interface {
	mdstream.Converter
	mdstream.StreamConverter
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// NewEngine builds a converter resolving root-relative links against origin.
	NewEngine func(origin string) (Engine, error)

	// NewExtractor is nil when no extraction pre-pass is configured.
	NewExtractor func(pageURL string) mdstream.Extractor

	Fetcher   mdstream.Fetcher
	Limiter   *mdhttp.DomainLimiter
	Documents mdstream.DocumentService
	Store     mdstream.DocumentStore
	Tokens    mdstream.TokenCounter

	Strategy    mdstream.Strategy
	Concurrency int

	closers []func() error
}

// Close releases everything opened while wiring, in reverse order.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		errs = append(errs, d.closers[i]())
	}
	d.closers = nil
	return errors.Join(errs...)
}

// wholeDocuments reports whether sources must be read completely before
// conversion, which any pre-pass or record of the result requires.
func (d *Dependencies) wholeDocuments() bool {
	return d.NewExtractor != nil || d.Documents != nil || d.Store != nil || d.Tokens != nil
}

type loggedEngine struct {
	*mdslog.LoggingConverter
	*mdslog.LoggingStreamConverter
}

func logged(e Engine, logger *slog.Logger) Engine {
	return loggedEngine{
		LoggingConverter:       mdslog.NewLoggingConverter(e, logger),
		LoggingStreamConverter: mdslog.NewLoggingStreamConverter(e, logger),
	}
}
