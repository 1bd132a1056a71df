package mock

import "github.com/fwojciec/mdstream"

var _ mdstream.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of mdstream.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*mdstream.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*mdstream.ExtractResult, error) {
	return e.ExtractFn(html)
}
