package mock

import (
	"context"
	"io"
	"iter"

	"github.com/fwojciec/mdstream"
)

var (
	_ mdstream.Converter       = (*Converter)(nil)
	_ mdstream.StreamConverter = (*Converter)(nil)
)

// Converter is a mock implementation of mdstream.Converter and
// mdstream.StreamConverter.
type Converter struct {
	ConvertFn       func(html string) (string, error)
	ConvertStreamFn func(ctx context.Context, r io.Reader) iter.Seq2[string, error]
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

func (c *Converter) ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return c.ConvertStreamFn(ctx, r)
}
