package main

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/fwojciec/mdstream"
	"github.com/fwojciec/mdstream/sqlite"
	"github.com/fwojciec/mdstream/worker"
	"golang.org/x/sync/errgroup"
)

// ConvertCmd converts stdin or a list of URLs.
type ConvertCmd struct {
	Origin string
	URLs   []string
	Out    string
}

// Run executes the conversion.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	if len(c.URLs) == 0 {
		return c.runStdin(deps)
	}
	return c.runURLs(deps)
}

func (c *ConvertCmd) runStdin(deps *Dependencies) error {
	if !deps.wholeDocuments() {
		engine, err := deps.NewEngine(c.Origin)
		if err != nil {
			return err
		}
		return stream(deps, engine, deps.Stdin)
	}

	if (deps.Documents != nil || deps.Store != nil) && c.Origin == "" {
		return mdstream.Errorf(mdstream.EINVALID, "--origin is required to record documents read from stdin")
	}
	data, err := io.ReadAll(deps.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	doc, err := convertDocument(deps, c.Origin, c.Origin, string(data))
	if err != nil {
		return err
	}
	if deps.Store == nil {
		if err := writeDocument(deps.Stdout, doc, false); err != nil {
			return err
		}
	}
	return c.record(deps, []*mdstream.Document{doc})
}

// result is the outcome of converting one URL.
type result struct {
	url string
	doc *mdstream.Document
	err error
}

func (c *ConvertCmd) runURLs(deps *Dependencies) error {
	// A lone URL streams straight from the network to stdout.
	if len(c.URLs) == 1 && !deps.wholeDocuments() {
		u := c.URLs[0]
		engine, err := deps.NewEngine(originOf(c.Origin, u))
		if err != nil {
			return err
		}
		body, err := fetch(deps, u)
		if err != nil {
			return fmt.Errorf("%s: %w", u, err)
		}
		return stream(deps, engine, body)
	}

	var (
		mu      sync.Mutex
		queue   worker.Queue[result]
		docs    []*mdstream.Document
		errs    []error
		written int
	)
	// flush emits finished results in argument order. mu must be held.
	flush := func() {
		for {
			r, ok := queue.Pop()
			if !ok {
				return
			}
			if r.err != nil {
				fmt.Fprintf(deps.Stderr, "skip %s: %s\n", r.url, errorText(r.err))
				errs = append(errs, fmt.Errorf("%s: %w", r.url, r.err))
				continue
			}
			if deps.Store == nil {
				if err := writeDocument(deps.Stdout, r.doc, written > 0); err != nil {
					errs = append(errs, err)
				}
				written++
			}
			docs = append(docs, r.doc)
		}
	}

	var g errgroup.Group
	g.SetLimit(deps.Concurrency)
	for i, u := range c.URLs {
		g.Go(func() error {
			doc, err := c.convertURL(deps, u)
			mu.Lock()
			defer mu.Unlock()
			queue.Push(i, result{url: u, doc: doc, err: err})
			flush()
			return nil
		})
	}
	_ = g.Wait()

	if err := c.record(deps, docs); err != nil {
		return err
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d URLs failed: %w", len(errs), len(c.URLs), errors.Join(errs...))
	}
	return nil
}

func (c *ConvertCmd) convertURL(deps *Dependencies, u string) (*mdstream.Document, error) {
	body, err := fetch(deps, u)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return convertDocument(deps, u, originOf(c.Origin, u), string(data))
}

// record counts tokens, stores conversion records and writes files.
func (c *ConvertCmd) record(deps *Dependencies, docs []*mdstream.Document) error {
	if deps.Tokens != nil {
		if err := countTokens(deps, docs); err != nil {
			return err
		}
	}
	if deps.Documents != nil {
		if err := storeDocuments(deps, docs); err != nil {
			return err
		}
	}
	if deps.Store != nil {
		return saveFiles(deps, c.Out, docs)
	}
	return nil
}

func fetch(deps *Dependencies, rawURL string) (io.ReadCloser, error) {
	if deps.Limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, mdstream.Errorf(mdstream.EINVALID, "invalid URL %q", rawURL)
		}
		if err := deps.Limiter.Wait(deps.Ctx, u.Host); err != nil {
			return nil, err
		}
	}
	return deps.Fetcher.Fetch(deps.Ctx, rawURL)
}

// stream copies converted chunks to stdout as the engine produces them.
func stream(deps *Dependencies, engine Engine, r io.Reader) error {
	wrote := false
	for chunk, err := range engine.ConvertStream(deps.Ctx, r) {
		if err != nil {
			return err
		}
		if _, err := io.WriteString(deps.Stdout, chunk); err != nil {
			return err
		}
		wrote = true
	}
	if wrote {
		_, err := io.WriteString(deps.Stdout, "\n")
		return err
	}
	return nil
}

// convertDocument runs the optional extraction pre-pass and converts input.
func convertDocument(deps *Dependencies, sourceURL, origin, input string) (*mdstream.Document, error) {
	var title string
	if deps.NewExtractor != nil {
		res, err := deps.NewExtractor(sourceURL).Extract(input)
		if err != nil {
			return nil, fmt.Errorf("extract: %w", err)
		}
		title, input = res.Title, res.ContentHTML
	}

	engine, err := deps.NewEngine(origin)
	if err != nil {
		return nil, err
	}
	md, err := engine.Convert(input)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = mdstream.FirstHeading(md)
	}
	return &mdstream.Document{
		SourceURL:   sourceURL,
		Title:       title,
		Content:     md,
		Strategy:    deps.Strategy,
		ConvertedAt: time.Now().UTC(),
	}, nil
}

func writeDocument(w io.Writer, doc *mdstream.Document, separate bool) error {
	if doc.Content == "" {
		return nil
	}
	if separate {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, doc.Content+"\n")
	return err
}

func countTokens(deps *Dependencies, docs []*mdstream.Document) error {
	total := 0
	for _, doc := range docs {
		n, err := deps.Tokens.CountTokens(deps.Ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("count tokens: %w", err)
		}
		total += n
		name := doc.SourceURL
		if name == "" {
			name = "stdin"
		}
		fmt.Fprintf(deps.Stderr, "%s: %s\n", TruncateURL(name, 60), FormatTokens(n))
	}
	if len(docs) > 1 {
		fmt.Fprintf(deps.Stderr, "total: %s\n", FormatTokens(total))
	}
	return nil
}

// storeDocuments records each document unless an identical conversion of
// the same URL is already stored.
func storeDocuments(deps *Dependencies, docs []*mdstream.Document) error {
	for _, doc := range docs {
		hash := sqlite.HashContent(doc.Content)
		existing, err := deps.Documents.FindDocuments(deps.Ctx, mdstream.DocumentFilter{
			SourceURL:   &doc.SourceURL,
			ContentHash: &hash,
			Limit:       1,
		})
		if err != nil {
			return fmt.Errorf("find documents: %w", err)
		}
		if len(existing) > 0 {
			deps.Logger.Info("unchanged", "url", doc.SourceURL, "id", existing[0].ID)
			continue
		}
		doc.ContentHash = hash
		if err := deps.Documents.CreateDocument(deps.Ctx, doc); err != nil {
			return fmt.Errorf("store %s: %w", doc.SourceURL, err)
		}
	}
	return nil
}

func saveFiles(deps *Dependencies, dir string, docs []*mdstream.Document) error {
	if len(docs) == 0 {
		_ = deps.Store.Abort()
		fmt.Fprintln(deps.Stderr, "No documents saved")
		return nil
	}
	size := 0
	for _, doc := range docs {
		if err := deps.Store.Save(deps.Ctx, doc); err != nil {
			_ = deps.Store.Abort()
			return fmt.Errorf("save %s: %w", doc.SourceURL, err)
		}
		size += len(doc.Content)
	}
	if err := deps.Store.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	fmt.Fprintf(deps.Stderr, "Saved %d documents (%s) to %s\n", len(docs), FormatBytes(size), dir)
	return nil
}

// originOf returns origin, or the scheme and host of rawURL when origin is
// empty.
func originOf(origin, rawURL string) string {
	if origin != "" {
		return origin
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// errorText prefers the bare message of an application error.
func errorText(err error) string {
	if e, ok := err.(*mdstream.Error); ok {
		return e.Message
	}
	return err.Error()
}
