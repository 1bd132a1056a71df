package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// maxNewlines caps the number of consecutive newlines requested between
// fragments.
const maxNewlines = 2

// Ensure State implements mdstream.Context at compile time.
var _ mdstream.Context = (*State)(nil)

// State is the serializer state of one conversion. It must not be shared by
// concurrent conversions.
type State struct {
	origin   string
	arena    *arena
	regions  *regions
	pipeline *pipeline

	// pending is the number of newlines requested before the next content.
	pending int

	lists []listFrame
	table *tableState
	code  *codeState
}

type listFrame struct {
	node    mdstream.NodeID
	ordered bool
	next    int
}

func newState(origin string, a *arena, p *pipeline) *State {
	return &State{
		origin:   origin,
		arena:    a,
		regions:  newRegions(a),
		pipeline: p,
	}
}

func (s *State) OpenRegion(n *mdstream.Node, include bool) (mdstream.RegionID, bool) {
	return s.regions.open(n, include)
}

func (s *State) OpenDefaultRegion(include bool) mdstream.RegionID {
	return s.regions.openDefault(include)
}

func (s *State) IsIncluded(n *mdstream.Node) bool {
	return s.regions.included(n)
}

func (s *State) ExplicitRegion(n *mdstream.Node) (mdstream.RegionID, bool, bool) {
	id, ok := s.regions.explicit(n)
	if !ok {
		return mdstream.NoRegion, false, false
	}
	return id, s.regions.get(id).include, true
}

func (s *State) Parent(n *mdstream.Node) *mdstream.Node {
	return s.arena.get(n.Parent)
}

func (s *State) Origin() string { return s.origin }

// handle processes one event from the tree.
func (s *State) handle(ev mdstream.Event) error {
	n := ev.Node
	for _, h := range s.pipeline.before {
		skip, err := h.hook.BeforeNode(s, ev)
		if err != nil {
			return pluginError(h.name, err)
		}
		if skip {
			if ev.Kind == mdstream.Exit {
				s.regions.close(n)
			}
			return nil
		}
	}

	var err error
	switch n.Kind {
	case mdstream.ElementNode:
		if ev.Kind == mdstream.Enter {
			err = s.enter(n)
		} else {
			err = s.exit(n)
		}
	case mdstream.TextNode:
		if ev.Kind == mdstream.Enter {
			err = s.text(n)
		}
	case mdstream.CommentNode:
		if ev.Kind == mdstream.Enter {
			s.write(n, "<!--"+n.Text+"-->", true)
		}
	}
	if ev.Kind == mdstream.Exit {
		s.regions.close(n)
	}
	return err
}

func (s *State) enter(n *mdstream.Node) error {
	for _, h := range s.pipeline.attrs {
		if err := h.hook.ProcessAttributes(s, n); err != nil {
			return pluginError(h.name, err)
		}
	}
	n.Output = n.Output[:0]
	for _, h := range s.pipeline.enter {
		frag, err := h.hook.OnNodeEnter(s, n)
		if err != nil {
			return pluginError(h.name, err)
		}
		if frag != "" {
			n.Output = append(n.Output, frag)
		}
	}

	before, _ := spacing(n)
	s.request(before)
	var out string
	if h := enterHandlers[n.Tag]; h != nil {
		out = h(s, n)
	}
	if len(n.Output) > 0 {
		out = strings.Join(n.Output, "")
	}
	s.write(n, out, true)
	return nil
}

func (s *State) exit(n *mdstream.Node) error {
	n.Output = n.Output[:0]
	for _, h := range s.pipeline.exit {
		frag, err := h.hook.OnNodeExit(s, n)
		if err != nil {
			return pluginError(h.name, err)
		}
		if frag != "" {
			n.Output = append(n.Output, frag)
		}
	}

	var out string
	if h := exitHandlers[n.Tag]; h != nil {
		out = h(s, n)
	}
	if len(n.Output) > 0 {
		out = strings.Join(n.Output, "")
	}
	s.write(n, out, !n.Tag.IsInline())
	_, after := spacing(n)
	s.request(after)
	return nil
}

// request asks for at least k newlines before the next content.
func (s *State) request(k int) {
	if k > s.pending {
		s.pending = min(k, maxNewlines)
	}
}

// write appends content to the buffer collecting output for n. With flush
// set, pending newlines are written first.
func (s *State) write(n *mdstream.Node, content string, flush bool) {
	if content == "" {
		return
	}
	if s.code != nil {
		if s.regions.included(n) {
			s.code.write(content, flush, &s.pending)
		}
		return
	}
	if s.table != nil {
		switch {
		case s.table.cell != nil:
			if s.regions.included(n) {
				s.table.write(content, &s.pending)
			}
			return
		case n.Kind == mdstream.CommentNode:
			// Comments between rows are kept and follow the table.
			if s.regions.included(n) {
				s.table.comments = append(s.table.comments, content)
			}
			return
		case n.Tag != mdstream.TagTr:
			return
		}
	}
	reg := s.regions.get(s.regions.lookup(n))
	level := int(n.Depths[mdstream.TagBlockquote])
	if flush {
		s.flush(reg, level)
	}
	appendQuoted(reg, content, level)
}

// flush writes the pending newlines into reg, counting the newlines already
// present so that only the difference is added.
func (s *State) flush(reg *region, level int) {
	if s.pending == 0 {
		return
	}
	have := trailingNewlines(reg.buf)
	need := s.pending - have
	s.pending = 0
	if need <= 0 {
		return
	}
	if n := len(reg.buf); have == 0 && n > reg.flushed && reg.buf[n-1] == ' ' {
		reg.buf = reg.buf[:n-1]
	}
	marker := ""
	if level > 0 {
		if q := lastQuoteLevel(reg.buf); q > 0 {
			marker = strings.TrimRight(strings.Repeat("> ", min(level, q)), " ")
		}
	}
	for range need {
		if marker != "" && endsWithNewline(reg.buf) {
			reg.buf = append(reg.buf, marker...)
		}
		reg.buf = append(reg.buf, '\n')
	}
}

// appendQuoted appends content, prefixing every line inside a blockquote.
func appendQuoted(reg *region, content string, level int) {
	if level == 0 {
		reg.buf = append(reg.buf, content...)
		return
	}
	prefix := strings.Repeat("> ", level)
	if len(reg.buf) == 0 || endsWithNewline(reg.buf) {
		reg.buf = append(reg.buf, prefix...)
	}
	reg.buf = append(reg.buf, strings.ReplaceAll(content, "\n", "\n"+prefix)...)
}

// tail returns the buffer that content written for n currently ends with.
func (s *State) tail(n *mdstream.Node) []byte {
	if s.code != nil {
		return s.code.buf
	}
	if s.table != nil && s.table.cell != nil {
		return s.table.cell.buf
	}
	return s.regions.get(s.regions.lookup(n)).buf
}

// trailingNewlines counts the newlines ending buf. Lines holding only
// blockquote markers count as blank.
func trailingNewlines(buf []byte) int {
	count := 0
	end := len(buf)
	for end > 0 && buf[end-1] == '\n' {
		count++
		end--
		k := end
		for k > 0 && (buf[k-1] == '>' || buf[k-1] == ' ') {
			k--
		}
		if k < end && (k == 0 || buf[k-1] == '\n') {
			end = k
		}
	}
	return count
}

// lastQuoteLevel returns the number of blockquote markers starting the last
// non-blank line of buf.
func lastQuoteLevel(buf []byte) int {
	end := len(buf)
	for end > 0 && buf[end-1] == '\n' {
		end--
	}
	start := end
	for start > 0 && buf[start-1] != '\n' {
		start--
	}
	level := 0
	for _, c := range buf[start:end] {
		switch c {
		case '>':
			level++
		case ' ':
		default:
			return level
		}
	}
	return level
}

func endsWithNewline(buf []byte) bool {
	return len(buf) > 0 && buf[len(buf)-1] == '\n'
}

// atLineStart reports whether the last line of buf holds nothing but
// blockquote markers.
func atLineStart(buf []byte) bool {
	for i := len(buf) - 1; i >= 0; i-- {
		switch buf[i] {
		case '\n':
			return true
		case '>', ' ':
		default:
			return false
		}
	}
	return true
}

func endsWithSpace(buf []byte) bool {
	if len(buf) == 0 {
		return true
	}
	return isSpace(buf[len(buf)-1])
}

// spacing returns the newlines an element requests before its content and
// after it.
func spacing(n *mdstream.Node) (before, after int) {
	switch n.Tag {
	case mdstream.TagLi:
		return 1, 0
	case mdstream.TagHead:
		return 0, 2
	case mdstream.TagTr, mdstream.TagThead, mdstream.TagTbody, mdstream.TagTfoot:
		if n.Depths[mdstream.TagTable] == 1 {
			return 0, 1
		}
		return 0, 0
	case mdstream.TagTd, mdstream.TagTh, mdstream.TagCaption, mdstream.TagHTML, mdstream.TagBody:
		return 0, 0
	case mdstream.TagTable:
		if n.Depths[mdstream.TagTable] > 1 {
			return 0, 0
		}
	}
	if !n.Tag.IsBlock() {
		return 0, 0
	}
	if n.Depths[mdstream.TagLi] > 0 || insideInline(n) {
		return 0, 0
	}
	if n.Tag == mdstream.TagDt || n.Tag == mdstream.TagDd {
		return 1, 0
	}
	return 2, 2
}

// insideInline reports whether an inline element encloses n.
func insideInline(n *mdstream.Node) bool {
	for _, t := range mdstream.InlineTags {
		c := n.Depths[t]
		if t == n.Tag {
			c--
		}
		if c > 0 {
			return true
		}
	}
	return false
}
