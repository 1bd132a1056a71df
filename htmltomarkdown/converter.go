// Package htmltomarkdown provides a whole-document reference engine backed
// by html-to-markdown. It is used to compare output against the streaming
// engine and as a fallback for documents the streaming engine mangles.
package htmltomarkdown

import (
	"context"
	"io"
	"iter"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/strikethrough"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/fwojciec/mdstream"
)

var (
	_ mdstream.Converter       = (*Converter)(nil)
	_ mdstream.StreamConverter = (*Converter)(nil)
)

// boilerplate is removed before rendering under the minimal strategies.
var boilerplate = []string{
	"nav", "footer", "aside", "form", "button", "select",
	"iframe", "svg", "noscript", "dialog",
}

// Converter wraps html-to-markdown to convert HTML to Markdown.
type Converter struct {
	conv   *converter.Converter
	origin string
}

// NewConverter creates a Converter honouring the origin and strategy of
// opts. Plugins are specific to the streaming engine and are rejected.
func NewConverter(opts mdstream.Options) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(opts.Plugins) > 0 {
		return nil, mdstream.Errorf(mdstream.EINVALID, "reference engine does not support plugins")
	}
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
			strikethrough.NewStrikethroughPlugin(),
		),
	)
	if opts.Strategy != mdstream.StrategyFull {
		for _, tag := range boilerplate {
			conv.Register.TagType(tag, converter.TagTypeRemove, converter.PriorityStandard)
		}
	}
	return &Converter{conv: conv, origin: opts.Origin}, nil
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", mdstream.Errorf(mdstream.EINVALID, "empty HTML input")
	}

	var convOpts []converter.ConvertOptionFunc
	if c.origin != "" {
		convOpts = append(convOpts, converter.WithDomain(c.origin))
	}
	result, err := c.conv.ConvertString(html, convOpts...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(result), nil
}

// ConvertStream reads r to the end and yields the converted document as a
// single chunk. Empty input yields nothing.
func (c *Converter) ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if closer, ok := r.(io.Closer); ok {
			defer closer.Close()
		}
		if r == nil {
			yield("", mdstream.Errorf(mdstream.EINVALID, "nil reader"))
			return
		}
		data, err := io.ReadAll(r)
		if err != nil {
			yield("", err)
			return
		}
		if err := ctx.Err(); err != nil {
			yield("", err)
			return
		}
		if strings.TrimSpace(string(data)) == "" {
			return
		}
		md, err := c.Convert(string(data))
		if err != nil {
			yield("", err)
			return
		}
		if md != "" {
			yield(md, nil)
		}
	}
}
