package html

import (
	"context"
	"io"
	"iter"

	"github.com/fwojciec/mdstream"
)

// Ensure Converter implements the domain interfaces at compile time.
var (
	_ mdstream.Converter       = (*Converter)(nil)
	_ mdstream.StreamConverter = (*Converter)(nil)
)

// Converter converts HTML to Markdown with the streaming engine.
type Converter struct {
	opts mdstream.Options
}

// Option configures a Converter.
type Option func(*Converter)

// WithOrigin sets the base URL used to resolve root-relative links.
func WithOrigin(origin string) Option {
	return func(c *Converter) {
		c.opts.Origin = origin
	}
}

// WithStrategy sets the filtering strategy.
func WithStrategy(s mdstream.Strategy) Option {
	return func(c *Converter) {
		c.opts.Strategy = s
	}
}

// WithPlugins appends plugins run after the strategy's built-in plugins.
func WithPlugins(plugins ...mdstream.Plugin) Option {
	return func(c *Converter) {
		c.opts.Plugins = append(c.opts.Plugins, plugins...)
	}
}

// NewConverter creates a new Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Options returns the options the converter was built with.
func (c *Converter) Options() mdstream.Options { return c.opts }

// Convert transforms a complete HTML document into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	return Convert(html, c.opts)
}

// ConvertStream converts HTML read from r.
func (c *Converter) ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return ConvertStream(ctx, r, c.opts)
}

// Convert transforms a complete HTML document into Markdown.
func Convert(html string, opts mdstream.Options) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	s := NewSession(opts)
	if err := s.Write(html); err != nil {
		return "", err
	}
	return s.Close()
}

// ConvertChunks feeds chunks to one session and returns the drained pieces.
// It exists for callers that already hold the input split in memory.
func ConvertChunks(chunks []string, opts mdstream.Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	s := NewSession(opts)
	var out []string
	for _, chunk := range chunks {
		if err := s.Write(chunk); err != nil {
			return out, err
		}
		if md := s.Drain(); md != "" {
			out = append(out, md)
		}
	}
	md, err := s.Close()
	if err != nil {
		return out, err
	}
	if md != "" {
		out = append(out, md)
	}
	return out, nil
}
