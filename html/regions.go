package html

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/fwojciec/mdstream"
)

// compactThreshold is the number of drained bytes a region keeps before its
// buffer is compacted.
const compactThreshold = 32 << 10

type region struct {
	include bool
	closed  bool
	buf     []byte
	// flushed is the offset in buf up to which content has been drained.
	flushed int
}

// regions collects serialized content per buffer region. Regions are kept in
// creation order; output concatenates the included ones.
type regions struct {
	arena *arena
	list  []*region
	def   mdstream.RegionID

	drainIdx int
	started  bool
	held     string
}

func newRegions(a *arena) *regions {
	return &regions{
		arena: a,
		list:  []*region{{include: true}},
		def:   mdstream.DefaultRegion,
	}
}

// open claims a region for n. The first caller wins.
func (r *regions) open(n *mdstream.Node, include bool) (mdstream.RegionID, bool) {
	if n.Region != mdstream.NoRegion {
		return n.Region, false
	}
	id := r.create(include)
	n.Region = id
	return id, true
}

func (r *regions) create(include bool) mdstream.RegionID {
	r.list = append(r.list, &region{include: include})
	return mdstream.RegionID(len(r.list) - 1)
}

// openDefault closes the current default region and creates a new one.
func (r *regions) openDefault(include bool) mdstream.RegionID {
	r.list[r.def].closed = true
	r.def = r.create(include)
	return r.def
}

// close marks the region owned by n as complete.
func (r *regions) close(n *mdstream.Node) {
	if n.Region != mdstream.NoRegion {
		r.list[n.Region].closed = true
	}
}

// explicit returns the nearest region opened on n or one of its ancestors.
func (r *regions) explicit(n *mdstream.Node) (mdstream.RegionID, bool) {
	for n != nil {
		if n.Region != mdstream.NoRegion {
			return n.Region, true
		}
		n = r.arena.get(n.Parent)
	}
	return mdstream.NoRegion, false
}

// lookup returns the region content under n is collected into.
func (r *regions) lookup(n *mdstream.Node) mdstream.RegionID {
	if id, ok := r.explicit(n); ok {
		return id
	}
	return r.def
}

func (r *regions) included(n *mdstream.Node) bool {
	return r.list[r.lookup(n)].include
}

func (r *regions) get(id mdstream.RegionID) *region {
	return r.list[id]
}

// collect appends content to the region covering n.
func (r *regions) collect(n *mdstream.Node, content string) {
	if content == "" {
		return
	}
	reg := r.list[r.lookup(n)]
	reg.buf = append(reg.buf, content...)
	if !reg.include {
		reg.flushed = len(reg.buf)
		reg.compact()
	}
}

// assemble concatenates the included regions in creation order, trims the
// leading whitespace of the result and clears all region state.
func (r *regions) assemble() string {
	var sb strings.Builder
	for _, reg := range r.list {
		if reg.include {
			sb.Write(reg.buf)
		}
	}
	r.reset()
	return strings.TrimLeftFunc(sb.String(), unicode.IsSpace)
}

func (r *regions) reset() {
	r.list = []*region{{include: true}}
	r.def = mdstream.DefaultRegion
	r.drainIdx = 0
	r.started = false
	r.held = ""
}

// drain returns the content that can no longer change. Regions are visited
// in creation order; draining stops at the first open included region, after
// emitting its content up to the last non-space character. Leading space of
// the whole output and, when final, trailing space are dropped, so the
// concatenation of all drained chunks equals assemble.
func (r *regions) drain(final bool) string {
	var sb strings.Builder
	for r.drainIdx < len(r.list) {
		reg := r.list[r.drainIdx]
		if !reg.include {
			r.drainIdx++
			continue
		}
		pending := string(reg.buf[reg.flushed:])
		if !reg.closed && !final {
			pending = strings.TrimRightFunc(pending, unicode.IsSpace)
			r.emit(&sb, pending)
			reg.flushed += len(pending)
			reg.compact()
			break
		}
		r.emit(&sb, pending)
		reg.flushed = len(reg.buf)
		reg.compact()
		r.drainIdx++
	}
	if final {
		r.held = ""
	}
	return sb.String()
}

func (r *regions) emit(sb *strings.Builder, s string) {
	if !r.started {
		s = strings.TrimLeftFunc(s, unicode.IsSpace)
		if s == "" {
			return
		}
		r.started = true
	}
	body := strings.TrimRightFunc(s, unicode.IsSpace)
	if body == "" {
		r.held += s
		return
	}
	sb.WriteString(r.held)
	sb.WriteString(body)
	r.held = s[len(body):]
}

// compact drops drained content, keeping the last lines before the flush
// point so trailing newline analysis still sees them.
func (reg *region) compact() {
	if reg.flushed < compactThreshold {
		return
	}
	cut := reg.flushed
	for range 2 {
		j := bytes.LastIndexByte(reg.buf[:cut], '\n')
		if j <= 0 {
			return
		}
		cut = j
	}
	reg.buf = append([]byte(nil), reg.buf[cut:]...)
	reg.flushed -= cut
}
