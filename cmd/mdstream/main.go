package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/cascadia"
	"github.com/fwojciec/mdstream/fs"
	"github.com/fwojciec/mdstream/gemini"
	"github.com/fwojciec/mdstream/goquery"
	"github.com/fwojciec/mdstream/html"
	"github.com/fwojciec/mdstream/htmltomarkdown"
	mdhttp "github.com/fwojciec/mdstream/http"
	"github.com/fwojciec/mdstream/readability"
	"github.com/fwojciec/mdstream/rod"
	mdslog "github.com/fwojciec/mdstream/slog"
	"github.com/fwojciec/mdstream/sqlite"
	"github.com/fwojciec/mdstream/trafilatura"
	"github.com/fwojciec/mdstream/worker"
	"github.com/mattn/go-isatty"
	"go.uber.org/automaxprocs/maxprocs"
)

func main() {
	// maxprocs.Set only fails on an invalid GOMAXPROCS, in which case the
	// runtime default is kept.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", errorText(err))
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read when no URLs are given.
	Stdin io.Reader

	// StdinIsTerminal reports whether Stdin is interactive. Reading HTML
	// from a terminal would block forever, so it is refused.
	StdinIsTerminal func() bool
}

// NewMain returns a new instance of Main reading from os.Stdin.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
		StdinIsTerminal: func() bool {
			fd := os.Stdin.Fd()
			return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		},
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mdstream"),
		kong.Description("Convert HTML to Markdown, streaming output as the input arrives.\n\n"+
			"Reads HTML from stdin, or fetches each URL argument."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Configuration(yamlConfig),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	strategy, err := mdstream.ParseStrategy(cli.Strategy)
	if err != nil {
		return err
	}
	if len(cli.URLs) == 0 && m.StdinIsTerminal != nil && m.StdinIsTerminal() {
		return mdstream.Errorf(mdstream.EINVALID, "no input: pipe HTML to stdin or pass URLs")
	}

	deps := &Dependencies{
		Ctx:         ctx,
		Stdin:       m.Stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      newLogger(stderr, cli.Verbose),
		Strategy:    strategy,
		Concurrency: max(cli.Concurrency, 1),
	}
	defer deps.Close()

	if err := cli.wire(deps); err != nil {
		return err
	}

	cmd := &ConvertCmd{
		Origin: cli.Origin,
		URLs:   cli.URLs,
		Out:    cli.Out,
	}
	return cmd.Run(deps)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config      kong.ConfigFlag `short:"C" help:"YAML file providing defaults for any flag, keyed by flag name"`
	Origin      string          `env:"MDSTREAM_ORIGIN" help:"Base URL for root-relative links (defaults to each URL's origin)"`
	Strategy    string          `env:"MDSTREAM_STRATEGY" default:"minimal" help:"Filtering preset: minimal, minimal-from-first-header or full"`
	Exclude     []string        `short:"x" help:"Drop elements matching this CSS selector (repeatable)"`
	Extract     string          `enum:"none,readability,trafilatura,framework" default:"none" help:"Isolate main content before converting (${enum})"`
	Engine      string          `enum:"stream,reference" default:"stream" help:"Conversion engine (${enum})"`
	Workers     int             `short:"w" help:"Tokenize each document on N parallel workers"`
	Render      bool            `help:"Render URLs in headless Chrome before converting"`
	Timeout     time.Duration   `short:"t" default:"30s" help:"Fetch timeout per URL"`
	Concurrency int             `short:"c" default:"4" help:"URLs converted at once"`
	RateLimit   float64         `name:"rate-limit" default:"2" help:"Requests per second per host (0 disables)"`
	Out         string          `short:"o" type:"path" help:"Write one Markdown file per URL under this directory"`
	DB          string          `name:"db" type:"path" env:"MDSTREAM_DB" help:"Record conversions in this SQLite database"`
	Tokens      bool            `help:"Report the token count of each document on stderr"`
	Verbose     bool            `short:"v" help:"Log fetches and conversions"`
	URLs        []string        `arg:"" optional:"" name:"url" help:"Pages to fetch and convert"`
}

// wire builds the services selected by the flags into deps.
func (cli *CLI) wire(deps *Dependencies) error {
	var plugins []mdstream.Plugin
	if len(cli.Exclude) > 0 {
		filter, err := cascadia.NewSelectorFilter(cli.Exclude...)
		if err != nil {
			return err
		}
		plugins = append(plugins, filter)
	}

	newEngine, err := cli.engineFactory(deps.Strategy, plugins)
	if err != nil {
		return err
	}
	deps.NewEngine = func(origin string) (Engine, error) {
		e, err := newEngine(origin)
		if err != nil {
			return nil, err
		}
		return logged(e, deps.Logger), nil
	}
	// Surface invalid engine options before any input is read.
	if _, err := deps.NewEngine(cli.Origin); err != nil {
		return err
	}

	deps.NewExtractor = extractorFactory(cli.Extract)

	if len(cli.URLs) > 0 {
		if err := cli.wireFetcher(deps); err != nil {
			return err
		}
	}

	if cli.DB != "" {
		db := sqlite.NewDB(cli.DB)
		if err := db.Open(); err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: set MDSTREAM_DB to use a different database path")
			return fmt.Errorf("failed to open database at %q: %w", cli.DB, err)
		}
		deps.closers = append(deps.closers, db.Close)
		deps.Documents = sqlite.NewDocumentService(db)
	}

	if cli.Out != "" {
		out := filepath.Clean(cli.Out)
		deps.Store = fs.NewFileStore(filepath.Dir(out), filepath.Base(out))
	}

	if cli.Tokens {
		tc, err := gemini.NewTokenCounter(gemini.DefaultModel)
		if err != nil {
			return fmt.Errorf("failed to create token counter: %w", err)
		}
		deps.Tokens = tc
	}
	return nil
}

func (cli *CLI) engineFactory(strategy mdstream.Strategy, plugins []mdstream.Plugin) (func(origin string) (Engine, error), error) {
	if cli.Workers < 0 {
		return nil, mdstream.Errorf(mdstream.EINVALID, "workers must not be negative")
	}
	switch {
	case cli.Engine == "reference":
		if cli.Workers > 0 {
			return nil, mdstream.Errorf(mdstream.EINVALID, "--workers requires the stream engine")
		}
		return func(origin string) (Engine, error) {
			return htmltomarkdown.NewConverter(mdstream.Options{Origin: origin, Strategy: strategy, Plugins: plugins})
		}, nil
	case cli.Workers > 0:
		pool := worker.NewPool(worker.WithWorkers(cli.Workers))
		return func(origin string) (Engine, error) {
			return worker.NewConverter(mdstream.Options{Origin: origin, Strategy: strategy, Plugins: plugins}, pool), nil
		}, nil
	}
	return func(origin string) (Engine, error) {
		return html.NewConverter(
			html.WithOrigin(origin),
			html.WithStrategy(strategy),
			html.WithPlugins(plugins...),
		), nil
	}, nil
}

func extractorFactory(name string) func(pageURL string) mdstream.Extractor {
	switch name {
	case "readability":
		return func(pageURL string) mdstream.Extractor {
			var opts []readability.Option
			if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
				opts = append(opts, readability.WithPageURL(u))
			}
			return readability.NewExtractor(opts...)
		}
	case "trafilatura":
		return func(pageURL string) mdstream.Extractor {
			var opts []trafilatura.Option
			if u, err := url.Parse(pageURL); err == nil && u.IsAbs() {
				opts = append(opts, trafilatura.WithPageURL(u))
			}
			return trafilatura.NewExtractor(opts...)
		}
	case "framework":
		e := goquery.NewExtractor()
		return func(string) mdstream.Extractor { return e }
	}
	return nil
}

func (cli *CLI) wireFetcher(deps *Dependencies) error {
	var fetcher mdstream.Fetcher
	if cli.Render {
		f, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		fetcher = f
	} else {
		fetcher = mdhttp.NewFetcher(
			mdhttp.WithTimeout(cli.Timeout),
			mdhttp.WithRetryHook(func(url string, attempt int, err error) {
				deps.Logger.Warn("retrying fetch", "url", url, "attempt", attempt, "err", err)
			}),
		)
	}
	deps.Fetcher = mdslog.NewLoggingFetcher(fetcher, deps.Logger)
	deps.closers = append(deps.closers, deps.Fetcher.Close)
	if cli.RateLimit > 0 {
		deps.Limiter = mdhttp.NewDomainLimiter(cli.RateLimit)
	}
	return nil
}

// newLogger logs to stderr. Informational records only appear when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
