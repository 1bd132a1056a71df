package html_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const streamFixture = `<!DOCTYPE html><html><head><title>Guide &amp; Notes</title>` +
	`<meta name="description" content="A short guide"><style>body { margin: 0 }</style></head>` +
	`<body><nav><a href="/">Home</a></nav><main><h1 id="top">Getting Started</h1>` +
	`<p>Install with <code>go install</code> and read the <a href="/docs">docs</a> &mdash; café 😀.</p>` +
	`<pre><code class="language-sh">` + "\n" + `go test ./...` + "\n" + `</code></pre>` +
	`<blockquote><p>Quoted</p><p>Twice</p></blockquote>` +
	`<ul><li>One<ul><li>Nested <em>item</em></li></ul></li><li>Two</li></ul>` +
	`<ol start="2"><li><input type="checkbox" checked> Done</li></ol>` +
	`<table><thead><tr><th align="left">A</th><th align="right">B</th></tr></thead>` +
	`<tbody><tr><td>1</td><td>2 | 3</td></tr></tbody></table>` +
	`<!-- keep me --><p>Line<br>break</p><div><p>Unclosed<div>Mixed</div>` +
	`</main><footer>Footer</footer></body></html>`

func collect(t *testing.T, seq iter.Seq2[string, error]) ([]string, error) {
	t.Helper()

	var chunks []string
	for chunk, err := range seq {
		if err != nil {
			return chunks, err
		}
		require.NotEmpty(t, chunk, "empty chunks are never yielded")
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

func TestConvertChunks_MatchesConvert(t *testing.T) {
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
			want, err := html.Convert(streamFixture, opts)
			require.NoError(t, err)
			require.NotEmpty(t, want)

			for k := 0; k <= len(streamFixture); k++ {
				chunks, err := html.ConvertChunks([]string{streamFixture[:k], streamFixture[k:]}, opts)
				require.NoError(t, err)
				require.Equal(t, want, strings.Join(chunks, ""), "split at %d", k)
			}
		})
	}
}

func TestConvertChunks_EveryByte(t *testing.T) {
	t.Parallel()

	opts := mdstream.Options{Origin: "https://example.com"}
	want, err := html.Convert(streamFixture, opts)
	require.NoError(t, err)

	bytes := make([]string, 0, len(streamFixture))
	for i := range len(streamFixture) {
		bytes = append(bytes, streamFixture[i:i+1])
	}
	chunks, err := html.ConvertChunks(bytes, opts)

	require.NoError(t, err)
	assert.Equal(t, want, strings.Join(chunks, ""))
	assert.Greater(t, len(chunks), 1, "output is produced incrementally")
}

func TestConvertStream(t *testing.T) {
	t.Parallel()

	t.Run("fails fast on a nil stream", func(t *testing.T) {
		t.Parallel()

		chunks, err := collect(t, html.ConvertStream(context.Background(), nil, mdstream.Options{}))

		assert.Empty(t, chunks)
		require.Error(t, err)
		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
		assert.Contains(t, mdstream.ErrorMessage(err), "invalid stream")
	})

	t.Run("matches convert when read one byte at a time", func(t *testing.T) {
		t.Parallel()

		want, err := html.Convert(streamFixture, mdstream.Options{})
		require.NoError(t, err)

		r := iotest.OneByteReader(strings.NewReader(streamFixture))
		chunks, err := collect(t, html.ConvertStream(context.Background(), r, mdstream.Options{}))

		require.NoError(t, err)
		assert.Equal(t, want, strings.Join(chunks, ""))
	})

	t.Run("closes the reader", func(t *testing.T) {
		t.Parallel()

		r := &closeRecorder{Reader: strings.NewReader(`<p>x</p>`)}
		chunks, err := collect(t, html.ConvertStream(context.Background(), r, mdstream.Options{}))

		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, chunks)
		assert.True(t, r.closed)
	})

	t.Run("closes the reader when the consumer stops early", func(t *testing.T) {
		t.Parallel()

		r := &closeRecorder{Reader: iotest.OneByteReader(strings.NewReader(`<h1>A</h1><p>b</p><p>c</p>`))}
		for range html.ConvertStream(context.Background(), r, mdstream.Options{}) {
			break
		}

		assert.True(t, r.closed)
	})

	t.Run("yields final content before the input ends", func(t *testing.T) {
		t.Parallel()

		pr, pw := io.Pipe()
		next, stop := iter.Pull2(html.ConvertStream(context.Background(), pr, mdstream.Options{}))
		defer stop()

		go func() { _, _ = pw.Write([]byte(`<h1>Title</h1><p>Body`)) }()
		chunk, err, ok := next()
		require.True(t, ok)
		require.NoError(t, err)
		assert.Equal(t, "# Title", chunk)

		go func() {
			_, _ = pw.Write([]byte(`</p>`))
			_ = pw.Close()
		}()
		rest := chunk
		for {
			chunk, err, ok := next()
			if !ok {
				break
			}
			require.NoError(t, err)
			rest += chunk
		}
		assert.Equal(t, "# Title\n\nBody", rest)
	})

	t.Run("surfaces read errors after partial output", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		r := io.MultiReader(strings.NewReader(`<h1>A</h1><p>b</p><p>`), iotest.ErrReader(boom))
		chunks, err := collect(t, html.ConvertStream(context.Background(), r, mdstream.Options{}))

		require.ErrorIs(t, err, boom)
		assert.Equal(t, "# A\n\nb", strings.Join(chunks, ""))
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r := &closeRecorder{Reader: strings.NewReader(`<p>x</p>`)}

		chunks, err := collect(t, html.ConvertStream(ctx, r, mdstream.Options{}))

		assert.Empty(t, chunks)
		require.ErrorIs(t, err, context.Canceled)
		assert.True(t, r.closed)
	})
}

func TestStream_SplitRunes(t *testing.T) {
	t.Parallel()

	doc := []byte(`<p>héllo wörld 😀 &amp; ✓</p>`)
	want, err := html.Convert(string(doc), mdstream.Options{})
	require.NoError(t, err)

	for k := 0; k <= len(doc); k++ {
		s := html.NewStream(mdstream.Options{})
		first, err := s.Feed(doc[:k])
		require.NoError(t, err)
		second, err := s.Feed(doc[k:])
		require.NoError(t, err)
		last, err := s.Close()
		require.NoError(t, err)

		assert.Equal(t, want, first+second+last, "split at %d", k)
	}
}

type closeRecorder struct {
	io.Reader
	closed bool
}

func (r *closeRecorder) Close() error {
	r.closed = true
	return nil
}
