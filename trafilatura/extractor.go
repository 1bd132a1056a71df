// Package trafilatura isolates main content with go-trafilatura before
// conversion.
package trafilatura

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/fwojciec/mdstream"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ mdstream.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
// Links and images are kept so the converted Markdown retains them.
type Extractor struct {
	opts trafilatura.Options
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithPageURL sets the address the page was fetched from.
func WithPageURL(u *url.URL) Option {
	return func(e *Extractor) {
		e.opts.OriginalURL = u
	}
}

// WithoutFallback disables the readability and dom-distiller fallbacks.
func WithoutFallback() Option {
	return func(e *Extractor) {
		e.opts.EnableFallback = false
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{opts: trafilatura.Options{
		EnableFallback: true,
		IncludeLinks:   true,
		IncludeImages:  true,
	}}
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

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), e.opts)
	if err != nil {
		return nil, mdstream.Errorf(mdstream.EINVALID, "trafilatura: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		var buf bytes.Buffer
		if err := html.Render(&buf, result.ContentNode); err != nil {
			return nil, err
		}
		contentHTML = buf.String()
	}

	return &mdstream.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}
