package mdstream

// Plugin is an ordered hook object that observes and alters a conversion.
// A plugin implements any subset of the hook interfaces below; hooks it does
// not implement are skipped.
type Plugin interface {
	Name() string
}

// Context is the view of a running conversion exposed to plugins.
type Context interface {
	// OpenRegion claims a buffer region for n. It returns false if n already
	// owns one; the first caller wins.
	OpenRegion(n *Node, include bool) (RegionID, bool)

	// OpenDefaultRegion closes the current default region and starts a new
	// one. Content not covered by an explicit region goes to it afterwards.
	OpenDefaultRegion(include bool) RegionID

	// IsIncluded reports whether content collected under n reaches the output.
	IsIncluded(n *Node) bool

	// ExplicitRegion returns the nearest region opened on n or an ancestor.
	ExplicitRegion(n *Node) (id RegionID, include bool, ok bool)

	// Parent returns the parent of n, or nil for the document node.
	Parent(n *Node) *Node

	// Origin is the base URL used to resolve root-relative links.
	Origin() string
}

// BeforeNodeProcessor runs first for every event. Returning skip suppresses
// all further processing of the event; traversal continues.
type BeforeNodeProcessor interface {
	BeforeNode(ctx Context, ev Event) (skip bool, err error)
}

// AttributeProcessor runs once per element on Enter, before tag handlers.
type AttributeProcessor interface {
	ProcessAttributes(ctx Context, n *Node) error
}

// NodeEnterHook may return a fragment that replaces the tag handler's output
// on Enter. Fragments from several plugins are concatenated in list order.
type NodeEnterHook interface {
	OnNodeEnter(ctx Context, n *Node) (string, error)
}

// NodeExitHook is the Exit counterpart of NodeEnterHook.
type NodeExitHook interface {
	OnNodeExit(ctx Context, n *Node) (string, error)
}

// TextResult is returned by TextProcessor. A non-empty Content replaces the
// node text seen by later plugins and the serializer.
type TextResult struct {
	Content string
	Skip    bool
}

// TextProcessor may rewrite or suppress a text node.
type TextProcessor interface {
	ProcessText(ctx Context, n *Node) (TextResult, error)
}
