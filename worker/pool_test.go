package worker_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/html"
	"github.com/fwojciec/mdstream/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture puts '>' and '<' inside raw text, comments, attribute values and
// code so that many cut points fall inside constructs that are not tags.
const fixture = `<html><head><title>T &amp; U</title>` +
	`<script>if (a > b) { x = "<p>" }</script></head>` +
	`<body><h1>Title</h1> <p class="a>b">One &amp; two</p>` +
	`<!-- note > <p>not a tag</p> -->` +
	`<table><tr><th>A</th><th>B</th></tr> <tr><td>1</td><td>2</td></tr></table>` +
	`<ul><li>x <ul><li>y</li></ul></li></ul>` +
	"<pre><code>a > b\n<c></code></pre>" +
	`<blockquote><p>q</p> <p>r</p></blockquote><p>end</p></body></html>`

func collectTokens(t *testing.T, p *worker.Pool, input string) []html.Token {
	t.Helper()

	var all []html.Token
	for tokens, err := range p.Tokens(context.Background(), input) {
		require.NoError(t, err)
		all = append(all, tokens...)
	}
	return all
}

func TestPool_Tokens_matches_sequential_lex(t *testing.T) {
	t.Parallel()

	want, _, _ := html.Lex(fixture, html.LexState{}, true)

	for _, size := range []int{1, 7, 32, 1 << 20} {
		p := worker.NewPool(worker.WithWorkers(4), worker.WithChunkSize(size))
		assert.Equal(t, want, collectTokens(t, p, fixture), "chunk size %d", size)
	}
}

func TestPool_Tokens_reorders_slow_chunks(t *testing.T) {
	t.Parallel()

	// Given a tokenizer that is slow on the first chunk
	slow := func(input string, st html.LexState, final bool) ([]html.Token, string, html.LexState) {
		if strings.HasPrefix(input, "<html>") {
			time.Sleep(20 * time.Millisecond)
		}
		return html.Lex(input, st, final)
	}
	p := worker.NewPool(worker.WithWorkers(8), worker.WithChunkSize(16), worker.WithLexFunc(slow))

	// When tokens are collected
	got := collectTokens(t, p, fixture)

	// Then they are still in document order
	want, _, _ := html.Lex(fixture, html.LexState{}, true)
	assert.Equal(t, want, got)
}

func TestPool_Tokens_retries_panicking_worker(t *testing.T) {
	t.Parallel()

	// Given a tokenizer that panics the first time it sees any input
	var seen sync.Map
	flaky := func(input string, st html.LexState, final bool) ([]html.Token, string, html.LexState) {
		if _, loaded := seen.LoadOrStore(input, true); !loaded {
			panic("flaky")
		}
		return html.Lex(input, st, final)
	}
	p := worker.NewPool(worker.WithWorkers(4), worker.WithChunkSize(24), worker.WithLexFunc(flaky))

	// Then the retry recovers every chunk
	want, _, _ := html.Lex(fixture, html.LexState{}, true)
	assert.Equal(t, want, collectTokens(t, p, fixture))
}

func TestPool_Tokens_surfaces_repeated_failure(t *testing.T) {
	t.Parallel()

	broken := func(input string, st html.LexState, final bool) ([]html.Token, string, html.LexState) {
		if strings.Contains(input, "boom") {
			panic("boom")
		}
		return html.Lex(input, st, final)
	}

	t.Run("persistent panic", func(t *testing.T) {
		t.Parallel()

		p := worker.NewPool(worker.WithChunkSize(8), worker.WithLexFunc(broken))
		var err error
		for _, e := range p.Tokens(context.Background(), "<p>a</p><p>boom</p><p>c</p>") {
			if e != nil {
				err = e
			}
		}
		require.Error(t, err)
		assert.Equal(t, mdstream.EINTERNAL, mdstream.ErrorCode(err))
		assert.Contains(t, mdstream.ErrorMessage(err), "lex worker panicked: boom")
	})

	t.Run("no retries", func(t *testing.T) {
		t.Parallel()

		var seen sync.Map
		once := func(input string, st html.LexState, final bool) ([]html.Token, string, html.LexState) {
			if _, loaded := seen.LoadOrStore(input, true); !loaded {
				panic("once")
			}
			return html.Lex(input, st, final)
		}
		p := worker.NewPool(worker.WithRetries(0), worker.WithLexFunc(once))
		c := worker.NewConverter(mdstream.Options{}, p)

		_, err := c.Convert("<p>a</p>")
		require.Error(t, err)
		assert.Equal(t, mdstream.EINTERNAL, mdstream.ErrorCode(err))
	})
}

func TestPool_Tokens_stops_early(t *testing.T) {
	t.Parallel()

	p := worker.NewPool(worker.WithWorkers(2), worker.WithChunkSize(4))
	batches := 0
	for _, err := range p.Tokens(context.Background(), fixture) {
		require.NoError(t, err)
		batches++
		break
	}
	assert.Equal(t, 1, batches)
}

func TestConverter_matches_html_Convert(t *testing.T) {
	t.Parallel()

	strategies := []mdstream.Strategy{
		mdstream.StrategyFull,
		mdstream.StrategyMinimal,
		mdstream.StrategyMinimalFromFirstHeader,
	}
	for _, strategy := range strategies {
		t.Run(string(strategy), func(t *testing.T) {
			t.Parallel()

			opts := mdstream.Options{Origin: "https://example.com", Strategy: strategy}
			want, err := html.Convert(fixture, opts)
			require.NoError(t, err)

			for _, size := range []int{1, 5, 40} {
				c := worker.NewConverter(opts, worker.NewPool(worker.WithWorkers(3), worker.WithChunkSize(size)))
				got, err := c.Convert(fixture)
				require.NoError(t, err)
				assert.Equal(t, want, got, "chunk size %d", size)
			}
		})
	}
}

func TestConverter_Convert_errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid options", func(t *testing.T) {
		t.Parallel()

		c := worker.NewConverter(mdstream.Options{Strategy: "loose"}, nil)
		_, err := c.Convert("<p>a</p>")
		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})

	t.Run("cancelled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		c := worker.NewConverter(mdstream.Options{}, worker.NewPool(worker.WithChunkSize(4)))
		_, err := c.ConvertContext(ctx, fixture)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()

		md, err := worker.NewConverter(mdstream.Options{}, nil).Convert("")
		require.NoError(t, err)
		assert.Empty(t, md)
	})
}

func TestConverter_ConvertStream(t *testing.T) {
	t.Parallel()

	opts := mdstream.Options{Strategy: mdstream.StrategyFull}
	want, err := html.Convert(fixture, opts)
	require.NoError(t, err)

	c := worker.NewConverter(opts, worker.NewPool(worker.WithChunkSize(16)))
	var chunks []string
	for chunk, err := range c.ConvertStream(context.Background(), strings.NewReader(fixture)) {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}

	assert.Equal(t, []string{want}, chunks)
}
