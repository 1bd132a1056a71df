// Package worker lexes large documents in parallel and feeds the tokens to
// the streaming engine in document order.
package worker

import (
	"context"
	"iter"
	"runtime"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/html"
	"golang.org/x/sync/errgroup"
)

// Default pool settings.
const (
	DefaultChunkSize = 64 << 10
	DefaultRetries   = 1
)

// LexFunc tokenizes one piece of input. It must be safe to call from
// multiple goroutines on independent inputs. html.Lex is the default.
type LexFunc func(input string, st html.LexState, final bool) ([]html.Token, string, html.LexState)

// Pool splits a document into chunks and lexes them concurrently.
//
// Every chunk is lexed speculatively from a clean state. Results are put
// back in order by a Queue, and a speculative result is used only when the
// chunks before it ended on a clean boundary. Otherwise the chunk is lexed
// again with the carried tail and state, so the token stream always equals
// a sequential lex of the whole document.
type Pool struct {
	lex       LexFunc
	workers   int
	chunkSize int
	retries   int
}

// Option configures a Pool.
type Option func(*Pool)

// WithWorkers sets the number of concurrent lex workers.
func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithChunkSize sets the minimum chunk size in bytes.
func WithChunkSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithRetries sets how many times a failed lex is retried before the error
// is surfaced.
func WithRetries(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.retries = n
		}
	}
}

// WithLexFunc replaces the tokenizer.
func WithLexFunc(fn LexFunc) Option {
	return func(p *Pool) {
		if fn != nil {
			p.lex = fn
		}
	}
}

// NewPool creates a new Pool.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		lex:       html.Lex,
		workers:   runtime.GOMAXPROCS(0),
		chunkSize: DefaultChunkSize,
		retries:   DefaultRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// result is the outcome of lexing one chunk.
type result struct {
	seq    int
	tokens []html.Token
	rest   string
	next   html.LexState
	err    error
}

// Tokens lexes input and yields token batches in document order, one per
// chunk. Iteration stops at the first error.
func (p *Pool) Tokens(ctx context.Context, input string) iter.Seq2[[]html.Token, error] {
	return func(yield func([]html.Token, error) bool) {
		chunks := Split(input, p.chunkSize)
		if len(chunks) == 0 {
			return
		}
		last := len(chunks) - 1

		ctx, cancel := context.WithCancel(ctx)
		results := make(chan result, len(chunks))
		defer func() {
			cancel()
			for range results {
			}
		}()

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(p.workers)

		go func() {
			for i, chunk := range chunks {
				g.Go(func() error {
					if gctx.Err() != nil {
						return nil
					}
					results <- p.run(i, chunk, html.LexState{}, i == last)
					return nil
				})
			}
			_ = g.Wait()
			close(results)
		}()

		var (
			q     Queue[result]
			carry string
			st    html.LexState
		)
		for r := range results {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			q.Push(r.seq, r)
			for {
				r, ok := q.Pop()
				if !ok {
					break
				}
				tokens, err := p.settle(r, chunks[r.seq], &carry, &st, r.seq == last)
				if err != nil {
					yield(nil, err)
					return
				}
				if !yield(tokens, nil) {
					return
				}
			}
		}
		if q.Next() <= last {
			err := ctx.Err()
			if err == nil {
				err = mdstream.Errorf(mdstream.EINTERNAL, "chunk %d was never lexed", q.Next())
			}
			yield(nil, err)
		}
	}
}

// settle turns the speculative result for a chunk into its real tokens,
// given the tail and state left by the chunks before it.
func (p *Pool) settle(r result, chunk string, carry *string, st *html.LexState, final bool) ([]html.Token, error) {
	if *carry == "" && *st == (html.LexState{}) {
		if r.err != nil {
			return nil, r.err
		}
		*carry, *st = r.rest, r.next
		return r.tokens, nil
	}
	redo := p.run(r.seq, *carry+chunk, *st, final)
	if redo.err != nil {
		return nil, redo.err
	}
	*carry, *st = redo.rest, redo.next
	return redo.tokens, nil
}

// run lexes one chunk, retrying a failed attempt up to the configured
// number of times.
func (p *Pool) run(seq int, input string, st html.LexState, final bool) result {
	r := result{seq: seq}
	for range p.retries + 1 {
		r.tokens, r.rest, r.next, r.err = p.try(input, st, final)
		if r.err == nil {
			return r
		}
	}
	r.err = mdstream.Errorf(mdstream.EINTERNAL, "chunk %d: %s", seq, mdstream.ErrorMessage(r.err))
	return r
}

// try runs the tokenizer once and turns a panic into an error.
func (p *Pool) try(input string, st html.LexState, final bool) (tokens []html.Token, rest string, next html.LexState, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = mdstream.Errorf(mdstream.EINTERNAL, "lex worker panicked: %v", v)
		}
	}()
	tokens, rest, next = p.lex(input, st, final)
	return tokens, rest, next, nil
}
