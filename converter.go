package mdstream

import (
	"context"
	"io"
	"iter"
)

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms a complete HTML document into Markdown.
	Convert(html string) (string, error)
}

// StreamConverter converts HTML arriving from a reader into Markdown chunks.
type StreamConverter interface {
	// ConvertStream yields Markdown chunks as soon as they are final. Empty
	// chunks are never yielded. A non-nil error ends the sequence; chunks
	// already yielded are not retracted. The reader is closed on every
	// exit path if it implements io.Closer.
	ConvertStream(ctx context.Context, r io.Reader) iter.Seq2[string, error]
}
