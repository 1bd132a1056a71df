package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// Filter excludes page chrome such as navigation, sidebars and forms.
type Filter struct{}

// Ensure Filter implements mdstream.AttributeProcessor at compile time.
var _ mdstream.AttributeProcessor = (*Filter)(nil)

// NewFilter returns the boilerplate filter used by the minimal strategies.
func NewFilter() *Filter { return &Filter{} }

func (f *Filter) Name() string { return "filter" }

// ProcessAttributes opens an excluded region on boilerplate elements.
func (f *Filter) ProcessAttributes(ctx mdstream.Context, n *mdstream.Node) error {
	if excluded(n) {
		ctx.OpenRegion(n, false)
	}
	return nil
}

func excluded(n *mdstream.Node) bool {
	switch n.Tag {
	case mdstream.TagNav, mdstream.TagFooter, mdstream.TagAside, mdstream.TagForm,
		mdstream.TagButton, mdstream.TagSelect, mdstream.TagIframe, mdstream.TagSvg,
		mdstream.TagNoscript, mdstream.TagDialog:
		return true
	case mdstream.TagHeader:
		return !n.Within(mdstream.TagMain) && !n.Within(mdstream.TagArticle)
	}
	if _, ok := n.Attr("hidden"); ok {
		return true
	}
	if v, ok := n.Attr("aria-hidden"); ok && strings.EqualFold(v, "true") {
		return true
	}
	return false
}
