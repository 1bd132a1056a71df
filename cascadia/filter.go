// Package cascadia provides a plugin that drops elements matching CSS
// selectors from the converted output.
package cascadia

import (
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/mdstream"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Ensure SelectorFilter implements the plugin hooks at compile time.
var (
	_ mdstream.AttributeProcessor = (*SelectorFilter)(nil)
	_ mdstream.NodeExitHook       = (*SelectorFilter)(nil)
)

// shadowKey is the node annotation holding the element's shadow node.
const shadowKey = "cascadia.node"

// SelectorFilter excludes every element matched by one of its selectors,
// together with its subtree.
//
// The engine never holds a whole document, so selectors are matched against
// a shadow tree that only contains the currently open elements and their
// earlier siblings. Descendant, child and sibling combinators work, as do
// attribute and structural pseudo-classes that look backwards. An element
// has no following siblings when it is matched, so :last-child and similar
// match every element, and text content is never visible.
//
// Shadow nodes live in node annotations, so one SelectorFilter may serve
// concurrent conversions.
type SelectorFilter struct {
	selectors []cascadia.Selector
}

// NewSelectorFilter compiles the selectors. Each argument may itself be a
// comma-separated group.
func NewSelectorFilter(selectors ...string) (*SelectorFilter, error) {
	f := &SelectorFilter{}
	for _, s := range selectors {
		sel, err := cascadia.Compile(s)
		if err != nil {
			return nil, mdstream.Errorf(mdstream.EINVALID, "invalid selector %q: %v", s, err)
		}
		f.selectors = append(f.selectors, sel)
	}
	return f, nil
}

// Name implements mdstream.Plugin.
func (f *SelectorFilter) Name() string { return "selector-filter" }

// ProcessAttributes links the element into the shadow tree and opens an
// excluded region when a selector matches it.
func (f *SelectorFilter) ProcessAttributes(ctx mdstream.Context, n *mdstream.Node) error {
	if n.Kind != mdstream.ElementNode || len(f.selectors) == 0 {
		return nil
	}
	sh := shadowOf(ctx, n)
	for _, sel := range f.selectors {
		if sel.Match(sh) {
			ctx.OpenRegion(n, false)
			break
		}
	}
	return nil
}

// OnNodeExit forgets the children of a finished element.
func (f *SelectorFilter) OnNodeExit(_ mdstream.Context, n *mdstream.Node) (string, error) {
	if sh, ok := n.Data[shadowKey].(*nethtml.Node); ok {
		sh.FirstChild, sh.LastChild = nil, nil
	}
	return "", nil
}

// shadowOf returns the shadow node of n, creating it and any missing
// ancestors. Ancestors can be missing when an earlier plugin skipped them.
func shadowOf(ctx mdstream.Context, n *mdstream.Node) *nethtml.Node {
	if sh, ok := n.Data[shadowKey].(*nethtml.Node); ok {
		return sh
	}
	sh := &nethtml.Node{Type: nethtml.DocumentNode}
	if n.Kind == mdstream.ElementNode {
		sh = &nethtml.Node{
			Type:     nethtml.ElementNode,
			Data:     n.Name,
			DataAtom: atom.Lookup([]byte(n.Name)),
			Attr:     make([]nethtml.Attribute, 0, len(n.Attrs)),
		}
		for k, v := range n.Attrs {
			sh.Attr = append(sh.Attr, nethtml.Attribute{Key: k, Val: v})
		}
		if p := ctx.Parent(n); p != nil {
			shadowOf(ctx, p).AppendChild(sh)
		}
	}
	if n.Data == nil {
		n.Data = make(map[string]any, 1)
	}
	n.Data[shadowKey] = sh
	return sh
}
