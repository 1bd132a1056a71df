package html

import "github.com/fwojciec/mdstream"

const arenaPageSize = 64

// arena owns every node of one conversion. Nodes are addressed by index and
// stored in fixed-size pages so pointers stay valid while the arena grows.
// Slots are recycled once a node has exited.
type arena struct {
	pages []*[arenaPageSize]mdstream.Node
	free  []mdstream.NodeID
	next  mdstream.NodeID
}

func (a *arena) alloc() *mdstream.Node {
	var id mdstream.NodeID
	if n := len(a.free); n > 0 {
		id = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		id = a.next
		a.next++
		if int(id)/arenaPageSize == len(a.pages) {
			a.pages = append(a.pages, new([arenaPageSize]mdstream.Node))
		}
	}
	n := a.get(id)
	n.ID = id
	n.Parent = mdstream.NoNode
	n.Element = mdstream.NoNode
	n.Region = mdstream.NoRegion
	return n
}

func (a *arena) get(id mdstream.NodeID) *mdstream.Node {
	if id < 0 || id >= a.next {
		return nil
	}
	return &a.pages[int(id)/arenaPageSize][int(id)%arenaPageSize]
}

// release clears the node and returns its slot to the free list.
func (a *arena) release(n *mdstream.Node) {
	id := n.ID
	*n = mdstream.Node{}
	a.free = append(a.free, id)
}

// live returns the number of nodes currently allocated.
func (a *arena) live() int {
	return int(a.next) - len(a.free)
}
