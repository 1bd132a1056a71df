// Package readability isolates article content with go-readability before
// conversion.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/mdstream"
	"github.com/go-shiori/go-readability"
)

var _ mdstream.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct {
	pageURL *url.URL
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageURL sets the address the page was fetched from. Readability uses
// it to absolutize links and images in the extracted content.
func WithPageURL(u *url.URL) Option {
	return func(e *Extractor) {
		e.pageURL = u
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*mdstream.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, mdstream.Errorf(mdstream.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), e.pageURL)
	if err != nil {
		return nil, mdstream.Errorf(mdstream.EINVALID, "readability: %v", err)
	}

	return &mdstream.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
