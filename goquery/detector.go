// Package goquery isolates the main content of documentation pages before
// conversion, using goquery to recognise the generator that built the page.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/mdstream"
)

var _ mdstream.FrameworkDetector = (*Detector)(nil)

// marker ties a framework to CSS selectors that only its generator emits.
type marker struct {
	framework mdstream.Framework
	selectors []string
}

// markers are checked in order. VitePress precedes VuePress because it
// inherits some VuePress class names.
var markers = []marker{
	{mdstream.FrameworkDocusaurus, []string{
		"#__docusaurus_skipToContent_fallback",
		".theme-doc-sidebar-container",
		"html[data-theme][data-rh]",
	}},
	{mdstream.FrameworkMkDocs, []string{
		"[data-md-color-scheme]",
		"[data-md-component]",
		".md-nav--primary",
	}},
	{mdstream.FrameworkSphinx, []string{
		".toctree-wrapper",
		".wy-nav-side",
		".wy-menu-vertical",
		".sphinxsidebar",
	}},
	{mdstream.FrameworkVitePress, []string{
		"#VPContent",
		".VPDoc",
		".VPDocAsideOutline",
	}},
	{mdstream.FrameworkVuePress, []string{
		".theme-default-content",
		".sidebar-links",
		".vuepress-navbar",
	}},
	{mdstream.FrameworkGitBook, []string{
		"[data-testid='space.sidebar']",
		"[data-testid='page.desktopTableOfContents']",
	}},
	{mdstream.FrameworkNextra, []string{
		".nextra-navbar",
		".nextra-sidebar",
		".nextra-toc",
	}},
}

// generators maps a substring of <meta name="generator"> to its framework.
// vitepress must be tested before vuepress.
var generators = []struct {
	needle    string
	framework mdstream.Framework
}{
	{"sphinx", mdstream.FrameworkSphinx},
	{"gitbook", mdstream.FrameworkGitBook},
	{"docusaurus", mdstream.FrameworkDocusaurus},
	{"mkdocs", mdstream.FrameworkMkDocs},
	{"vitepress", mdstream.FrameworkVitePress},
	{"vuepress", mdstream.FrameworkVuePress},
	{"nextra", mdstream.FrameworkNextra},
}

// Detector identifies documentation frameworks from HTML content.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
func (d *Detector) Detect(html string) mdstream.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return mdstream.FrameworkUnknown
	}
	return detect(doc)
}

func detect(doc *goquery.Document) mdstream.Framework {
	// The generator tag is the most reliable signal when present.
	if fw := fromGenerator(doc); fw != mdstream.FrameworkUnknown {
		return fw
	}
	for _, m := range markers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}
	if hasGitBookClasses(doc) {
		return mdstream.FrameworkGitBook
	}
	return mdstream.FrameworkUnknown
}

func fromGenerator(doc *goquery.Document) mdstream.Framework {
	content, ok := doc.Find("meta[name='generator']").Last().Attr("content")
	if !ok {
		return mdstream.FrameworkUnknown
	}
	content = strings.ToLower(content)
	for _, g := range generators {
		if strings.Contains(content, g.needle) {
			return g.framework
		}
	}
	return mdstream.FrameworkUnknown
}

// hasGitBookClasses reports whether the html element carries at least two
// of the class names GitBook puts there.
func hasGitBookClasses(doc *goquery.Document) bool {
	root := doc.Find("html").First()
	count := 0
	for _, class := range []string{"circular-corners", "theme-clean", "tint"} {
		if root.HasClass(class) {
			count++
		}
	}
	return count >= 2
}
