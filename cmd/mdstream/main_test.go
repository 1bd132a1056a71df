package main_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/mdstream"
	main "github.com/fwojciec/mdstream/cmd/mdstream"
	"github.com/fwojciec/mdstream/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMain(stdin string) *main.Main {
	m := main.NewMain()
	m.Stdin = strings.NewReader(stdin)
	m.StdinIsTerminal = func() bool { return false }
	return m
}

func run(t *testing.T, m *main.Main, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = m.Run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/one", func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
		_, _ = w.Write([]byte(`<h1>One</h1><p>First page.</p>`))
	})
	mux.HandleFunc("/two", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<h1>Two</h1><p>Second page.</p>`))
	})
	mux.HandleFunc("/links", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<p><a href="/docs">Docs</a></p>`))
	})
	mux.HandleFunc("/guide/intro", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<h1>Intro</h1><p>Welcome.</p>`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, newMain(""), "--help")

	require.NoError(t, err)
	assert.Contains(t, stdout, "mdstream")
	assert.Contains(t, stdout, "--strategy")
	assert.Contains(t, stdout, "--exclude")
}

func TestMain_Run_Stdin(t *testing.T) {
	t.Parallel()

	t.Run("streams stdin to stdout", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(`<h1>Hi</h1><p>there</p>`), "--strategy", "full")

		require.NoError(t, err)
		assert.Equal(t, "# Hi\n\nthere\n", stdout)
	})

	t.Run("empty input prints nothing", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(""))

		require.NoError(t, err)
		assert.Empty(t, stdout)
	})

	t.Run("refuses an interactive terminal", func(t *testing.T) {
		t.Parallel()

		m := newMain("")
		m.StdinIsTerminal = func() bool { return true }

		_, _, err := run(t, m)

		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})

	t.Run("rejects unknown strategies", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, newMain("<p>x</p>"), "--strategy", "everything")

		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})

	t.Run("excludes selected elements", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(`<p>keep</p><div class="ad"><p>drop</p></div>`), "--strategy", "full", "-x", ".ad")

		require.NoError(t, err)
		assert.Equal(t, "keep\n", stdout)
	})

	t.Run("minimal strategy drops navigation", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(`<nav><a href="/">Menu</a></nav><main><p>Body</p></main>`))

		require.NoError(t, err)
		assert.Equal(t, "Body\n", stdout)
	})

	t.Run("parallel workers match the streaming engine", func(t *testing.T) {
		t.Parallel()

		input := `<h1>Title</h1><p>One <em>two</em></p><ul><li>a</li><li>b</li></ul><pre><code>x > y</code></pre>`
		want, _, err := run(t, newMain(input), "--strategy", "full")
		require.NoError(t, err)

		got, _, err := run(t, newMain(input), "--strategy", "full", "-w", "3")

		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("reference engine", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(`<h1>Hi</h1><p>there</p>`), "--engine", "reference")

		require.NoError(t, err)
		assert.Equal(t, "# Hi\n\nthere\n", stdout)
	})

	t.Run("reference engine cannot run selector plugins", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, newMain(`<p>x</p>`), "--engine", "reference", "-x", ".ad")

		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})

	t.Run("framework extraction isolates content", func(t *testing.T) {
		t.Parallel()

		page := `<html><body><div class="theme-doc-sidebar-container"><a href="/a">Sidebar</a></div>` +
			`<article><div class="theme-doc-markdown"><h1>Install</h1><p>Run it.</p></div></article></body></html>`

		stdout, _, err := run(t, newMain(page), "--extract", "framework")

		require.NoError(t, err)
		assert.Equal(t, "# Install\n\nRun it.\n", stdout)
	})

	t.Run("verbose logs conversions", func(t *testing.T) {
		t.Parallel()

		_, stderr, err := run(t, newMain(`<p>x</p>`), "-v")

		require.NoError(t, err)
		assert.Contains(t, stderr, "convert")
	})

	t.Run("recording stdin requires an origin", func(t *testing.T) {
		t.Parallel()

		_, _, err := run(t, newMain(`<p>x</p>`), "--db", filepath.Join(t.TempDir(), "db.sqlite"))

		assert.Equal(t, mdstream.EINVALID, mdstream.ErrorCode(err))
	})
}

// Environment variables cannot be combined with t.Parallel.
func TestMain_Run_StrategyFromEnvironment(t *testing.T) {
	t.Setenv("MDSTREAM_STRATEGY", "full")

	stdout, _, err := run(t, newMain(`<nav>Menu</nav><p>Body</p>`))

	require.NoError(t, err)
	assert.Contains(t, stdout, "Menu")
	assert.Contains(t, stdout, "Body")
}

func TestMain_Run_URLs(t *testing.T) {
	t.Parallel()

	srv := newSite(t)

	t.Run("streams a single URL", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(""), "--strategy", "full", srv.URL+"/one")

		require.NoError(t, err)
		assert.Equal(t, "# One\n\nFirst page.\n", stdout)
	})

	t.Run("resolves root-relative links against the page origin", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(""), srv.URL+"/links")

		require.NoError(t, err)
		assert.Equal(t, "[Docs]("+srv.URL+"/docs)\n", stdout)
	})

	t.Run("prints documents in argument order", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := run(t, newMain(""), "--rate-limit", "0", "-c", "2", srv.URL+"/one", srv.URL+"/two")

		require.NoError(t, err)
		assert.Equal(t, "# One\n\nFirst page.\n\n# Two\n\nSecond page.\n", stdout)
	})

	t.Run("reports failed URLs and converts the rest", func(t *testing.T) {
		t.Parallel()

		stdout, stderr, err := run(t, newMain(""), "--rate-limit", "0", srv.URL+"/missing", srv.URL+"/two")

		require.Error(t, err)
		assert.Equal(t, mdstream.ENOTFOUND, mdstream.ErrorCode(err))
		assert.Contains(t, err.Error(), "1 of 2 URLs failed")
		assert.Contains(t, stderr, "skip "+srv.URL+"/missing")
		assert.Equal(t, "# Two\n\nSecond page.\n", stdout)
	})

	t.Run("writes files under the output directory", func(t *testing.T) {
		t.Parallel()

		out := filepath.Join(t.TempDir(), "site")

		stdout, stderr, err := run(t, newMain(""), "--rate-limit", "0", "-o", out, srv.URL+"/guide/intro", srv.URL+"/two")

		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.Contains(t, stderr, "Saved 2 documents")

		data, err := os.ReadFile(filepath.Join(out, "guide", "intro.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "source: "+srv.URL+"/guide/intro")
		assert.Contains(t, string(data), "title: Intro")
		assert.True(t, strings.HasSuffix(string(data), "# Intro\n\nWelcome."))

		_, err = os.Stat(filepath.Join(out, "two.md"))
		assert.NoError(t, err)
	})

	t.Run("records each conversion once while unchanged", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "mdstream.db")
		for range 2 {
			_, _, err := run(t, newMain(""), "--db", path, srv.URL+"/two")
			require.NoError(t, err)
		}

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		docs, err := sqlite.NewDocumentService(db).FindDocuments(context.Background(), mdstream.DocumentFilter{})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, srv.URL+"/two", docs[0].SourceURL)
		assert.Equal(t, "Two", docs[0].Title)
		assert.Equal(t, sqlite.HashContent("# Two\n\nSecond page."), docs[0].ContentHash)
	})
}
