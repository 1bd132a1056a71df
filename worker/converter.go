package worker

import (
	"context"
	"io"
	"iter"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/html"
)

var (
	_ mdstream.Converter       = (*Converter)(nil)
	_ mdstream.StreamConverter = (*Converter)(nil)
)

// Converter converts whole documents, lexing them with a Pool. Its output is
// identical to html.Convert with the same options.
type Converter struct {
	opts mdstream.Options
	pool *Pool
}

// NewConverter creates a Converter. A nil pool uses NewPool defaults.
func NewConverter(opts mdstream.Options, pool *Pool) *Converter {
	if pool == nil {
		pool = NewPool()
	}
	return &Converter{opts: opts, pool: pool}
}

// Convert transforms a complete HTML document into Markdown.
func (c *Converter) Convert(input string) (string, error) {
	return c.ConvertContext(context.Background(), input)
}

// ConvertContext is Convert with cancellation.
func (c *Converter) ConvertContext(ctx context.Context, input string) (string, error) {
	if err := c.opts.Validate(); err != nil {
		return "", err
	}
	s := html.NewSession(c.opts)
	for tokens, err := range c.pool.Tokens(ctx, input) {
		if err != nil {
			return "", err
		}
		if err := s.WriteTokens(tokens); err != nil {
			return "", err
		}
	}
	return s.Close()
}

// ConvertStream reads r to the end, converts it on the pool and yields the
// result as one chunk. Parallel lexing needs the whole input up front, so
// nothing is yielded before r is exhausted.
func (c *Converter) ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if r == nil {
			yield("", mdstream.Errorf(mdstream.EINVALID, "invalid stream: reader is nil"))
			return
		}
		if closer, ok := r.(io.Closer); ok {
			defer closer.Close()
		}
		data, err := io.ReadAll(r)
		if err != nil {
			yield("", err)
			return
		}
		md, err := c.ConvertContext(ctx, string(data))
		if err != nil {
			yield("", err)
			return
		}
		if md != "" {
			yield(md, nil)
		}
	}
}
