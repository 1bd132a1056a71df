package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mdstream"
)

var _ mdstream.Extractor = (*Extractor)(nil)

// DefaultContentSelectors lists, per framework, the selectors tried in order
// to find the element holding the documentation body.
var DefaultContentSelectors = map[mdstream.Framework][]string{
	mdstream.FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	mdstream.FrameworkMkDocs:     {"article.md-content__inner", ".md-content"},
	mdstream.FrameworkSphinx:     {"[role='main']", ".document .body", ".bodywrapper"},
	mdstream.FrameworkVitePress:  {".VPDoc .vp-doc", ".VPDoc"},
	mdstream.FrameworkVuePress:   {".theme-default-content"},
	mdstream.FrameworkGitBook:    {"[data-testid='page.contentEditor']", "main"},
	mdstream.FrameworkNextra:     {"article main", "article"},
	mdstream.FrameworkUnknown:    {"main", "[role='main']", "article", ".content", "body"},
}

// noise is removed from the selected content for every framework.
const noise = "nav, aside, footer, script, style, noscript, button, " +
	".headerlink, .hash-link, .header-anchor, .md-source-file, " +
	".theme-doc-footer, .pagination-nav, .VPDocFooter, .nextra-toc"

// Extractor isolates documentation bodies by recognising the framework that
// generated the page and selecting its content container.
type Extractor struct {
	detect    func(doc *goquery.Document) mdstream.Framework
	selectors map[mdstream.Framework][]string
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithContentSelectors replaces the content selectors for one framework.
func WithContentSelectors(framework mdstream.Framework, selectors ...string) ExtractorOption {
	return func(e *Extractor) {
		e.selectors[framework] = selectors
	}
}

// WithFramework skips detection and treats every page as built by framework.
func WithFramework(framework mdstream.Framework) ExtractorOption {
	return func(e *Extractor) {
		e.detect = func(*goquery.Document) mdstream.Framework { return framework }
	}
}

// NewExtractor creates an Extractor using DefaultContentSelectors.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		detect:    detect,
		selectors: make(map[mdstream.Framework][]string, len(DefaultContentSelectors)),
	}
	for fw, sels := range DefaultContentSelectors {
		e.selectors[fw] = sels
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the page title and the HTML of its content container.
// Pages of a recognised framework whose container is missing fall back to
// the generic selectors.
func (e *Extractor) Extract(html string) (*mdstream.ExtractResult, error) {
	if strings.TrimSpace(html) == "" {
		return nil, mdstream.Errorf(mdstream.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, mdstream.Errorf(mdstream.EINVALID, "failed to parse HTML: %v", err)
	}

	content := e.content(doc, e.detect(doc))
	if content == nil {
		return nil, mdstream.Errorf(mdstream.ENOTFOUND, "no content container found")
	}
	content.Find(noise).Remove()

	body, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, mdstream.Errorf(mdstream.EINTERNAL, "failed to render content: %v", err)
	}
	return &mdstream.ExtractResult{
		Title:       title(doc, content),
		ContentHTML: body,
	}, nil
}

func (e *Extractor) content(doc *goquery.Document, fw mdstream.Framework) *goquery.Selection {
	candidates := e.selectors[fw]
	if fw != mdstream.FrameworkUnknown {
		candidates = append(candidates[:len(candidates):len(candidates)], e.selectors[mdstream.FrameworkUnknown]...)
	}
	for _, sel := range candidates {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}

// title prefers the document <title>, then the first h1 of the content.
func title(doc *goquery.Document, content *goquery.Selection) string {
	if t := strings.TrimSpace(doc.Find("head title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(content.Find("h1").First().Text())
}
