package mdstream

// NodeKind distinguishes the node variants produced by the tree walker.
type NodeKind uint8

// Node kinds.
const (
	DocumentNode NodeKind = iota
	ElementNode
	TextNode
	CommentNode
)

func (k NodeKind) String() string {
	switch k {
	case DocumentNode:
		return "document"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	}
	return "unknown"
}

// NodeID is the index of a node in the arena owned by one conversion.
type NodeID int32

// NoNode is the parent of the document node.
const NoNode NodeID = -1

// RegionID identifies a buffer region.
type RegionID int32

// Region sentinels. DefaultRegion is created for every conversion and is
// included unless a plugin replaces it.
const (
	NoRegion      RegionID = -1
	DefaultRegion RegionID = 0
)

// DepthMap counts, per tag identity, how many elements of that tag enclose a
// node, the node itself included. Each element gets its own copy.
type DepthMap [TagCount]uint16

// Within reports whether at least one element of the given tag is counted.
func (m *DepthMap) Within(t TagID) bool { return m[t] > 0 }

// Node is the unit of traversal. Nodes live in an arena owned by a single
// conversion and are recycled once their Exit event has been processed, so
// plugins must not retain pointers to them across events.
type Node struct {
	ID     NodeID
	Kind   NodeKind
	Tag    TagID
	Name   string
	Depth  int
	Parent NodeID

	// Attrs holds element attributes with lower-case names.
	Attrs map[string]string

	// Depths reflects the tag counts of the ancestor chain at the moment
	// the node is visited.
	Depths DepthMap

	// Region is the buffer region claimed by this node, or NoRegion.
	Region RegionID

	// Text is the decoded text of a text node or the body of a comment.
	Text string

	// Whitespace is set on text nodes containing only whitespace.
	Whitespace bool

	// Element is the nearest enclosing element (or the document) of a
	// text or comment node.
	Element NodeID

	// Index is the position of the node among its parent's children.
	Index int

	// ChildCount is the number of children entered so far.
	ChildCount int

	// Output holds fragments produced by plugin hooks for the current event.
	Output []string

	// Data holds plugin annotations for the lifetime of the node.
	Data map[string]any
}

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// Within reports whether the node is, or is nested inside, an element with
// the given tag.
func (n *Node) Within(t TagID) bool { return n.Depths[t] > 0 }

// EventKind is Enter or Exit.
type EventKind uint8

// Event kinds.
const (
	Enter EventKind = iota
	Exit
)

func (k EventKind) String() string {
	if k == Enter {
		return "enter"
	}
	return "exit"
}

// Event is an enter or exit notification for one node. All descendant events
// occur between a node's Enter and Exit.
type Event struct {
	Kind EventKind
	Node *Node
}
