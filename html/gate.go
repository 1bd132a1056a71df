package html

import "github.com/fwojciec/mdstream"

// HeaderGate excludes everything before the first heading that is not
// itself excluded. The heading starts a new included default region.
type HeaderGate struct {
	open bool
}

var (
	_ mdstream.BeforeNodeProcessor = (*HeaderGate)(nil)
	_ mdstream.AttributeProcessor  = (*HeaderGate)(nil)
)

// NewHeaderGate returns the gate used by the minimal-from-first-header
// strategy.
func NewHeaderGate() *HeaderGate { return &HeaderGate{} }

func (g *HeaderGate) Name() string { return "header-gate" }

func (g *HeaderGate) BeforeNode(ctx mdstream.Context, ev mdstream.Event) (bool, error) {
	if ev.Kind == mdstream.Enter && ev.Node.Kind == mdstream.DocumentNode {
		ctx.OpenDefaultRegion(false)
	}
	return false, nil
}

func (g *HeaderGate) ProcessAttributes(ctx mdstream.Context, n *mdstream.Node) error {
	if g.open || n.Tag.HeadingLevel() == 0 || n.Within(mdstream.TagHead) {
		return nil
	}
	if _, include, ok := ctx.ExplicitRegion(n); ok && !include {
		return nil
	}
	ctx.OpenDefaultRegion(true)
	g.open = true
	return nil
}
