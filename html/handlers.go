package html

import (
	"strconv"
	"strings"

	"github.com/fwojciec/mdstream"
)

// handler returns the Markdown fragment for one tag event and may update the
// serializer state.
type handler func(s *State, n *mdstream.Node) string

var enterHandlers, exitHandlers [mdstream.TagCount]handler

func init() {
	both := func(h handler, tags ...mdstream.TagID) {
		for _, t := range tags {
			enterHandlers[t] = h
			exitHandlers[t] = h
		}
	}
	both(strong, mdstream.TagStrong, mdstream.TagB)
	both(emphasis, mdstream.TagEm, mdstream.TagI)
	both(strikethrough, mdstream.TagDel, mdstream.TagS, mdstream.TagStrike)
	enterHandlers[mdstream.TagSub] = literalOpen
	exitHandlers[mdstream.TagSub] = literalClose
	enterHandlers[mdstream.TagSup] = literalOpen
	exitHandlers[mdstream.TagSup] = literalClose
	enterHandlers[mdstream.TagIns] = literalOpen
	exitHandlers[mdstream.TagIns] = literalClose

	for t := mdstream.TagH1; t <= mdstream.TagH6; t++ {
		enterHandlers[t] = heading
	}
	enterHandlers[mdstream.TagA] = linkEnter
	exitHandlers[mdstream.TagA] = linkExit
	enterHandlers[mdstream.TagImg] = image
	enterHandlers[mdstream.TagCode] = codeEnter
	exitHandlers[mdstream.TagCode] = codeExit
	enterHandlers[mdstream.TagUl] = listEnter
	enterHandlers[mdstream.TagOl] = listEnter
	exitHandlers[mdstream.TagUl] = listExit
	exitHandlers[mdstream.TagOl] = listExit
	enterHandlers[mdstream.TagLi] = listItem
	enterHandlers[mdstream.TagInput] = checkbox
	enterHandlers[mdstream.TagHr] = rule
	enterHandlers[mdstream.TagBr] = lineBreak

	enterHandlers[mdstream.TagTable] = tableEnter
	exitHandlers[mdstream.TagTable] = tableExit
	for _, t := range []mdstream.TagID{mdstream.TagThead, mdstream.TagTbody, mdstream.TagTfoot, mdstream.TagCaption} {
		enterHandlers[t] = nestedTableOpen
		exitHandlers[t] = nestedTableClose
	}
	enterHandlers[mdstream.TagTr] = rowEnter
	exitHandlers[mdstream.TagTr] = rowExit
	enterHandlers[mdstream.TagTd] = cellEnter
	exitHandlers[mdstream.TagTd] = cellExit
	enterHandlers[mdstream.TagTh] = cellEnter
	exitHandlers[mdstream.TagTh] = cellExit
}

func strong(_ *State, n *mdstream.Node) string {
	if n.Depths[mdstream.TagStrong]+n.Depths[mdstream.TagB] > 1 {
		return ""
	}
	return "**"
}

func emphasis(_ *State, n *mdstream.Node) string {
	if n.Depths[mdstream.TagEm]+n.Depths[mdstream.TagI] > 1 {
		return ""
	}
	return "*"
}

func strikethrough(_ *State, n *mdstream.Node) string {
	if n.Depths[mdstream.TagDel]+n.Depths[mdstream.TagS]+n.Depths[mdstream.TagStrike] > 1 {
		return ""
	}
	return "~~"
}

func literalOpen(_ *State, n *mdstream.Node) string  { return "<" + n.Name + ">" }
func literalClose(_ *State, n *mdstream.Node) string { return "</" + n.Name + ">" }

func heading(_ *State, n *mdstream.Node) string {
	if inCell(n) {
		return ""
	}
	return strings.Repeat("#", n.Tag.HeadingLevel()) + " "
}

func linkEnter(_ *State, n *mdstream.Node) string {
	if _, ok := n.Attr("href"); !ok {
		return ""
	}
	return "["
}

func linkExit(s *State, n *mdstream.Node) string {
	href, ok := n.Attr("href")
	if !ok {
		return ""
	}
	return "](" + s.resolve(href) + title(n) + ")"
}

func image(s *State, n *mdstream.Node) string {
	src, ok := n.Attr("src")
	if !ok || src == "" {
		return ""
	}
	alt, _ := n.Attr("alt")
	return "![" + collapseWhitespace(alt) + "](" + s.resolve(src) + title(n) + ")"
}

func title(n *mdstream.Node) string {
	t, ok := n.Attr("title")
	if !ok || t == "" {
		return ""
	}
	return ` "` + strings.ReplaceAll(t, `"`, `\"`) + `"`
}

// resolve rewrites protocol-relative URLs to https and prefixes root-relative
// ones with the configured origin.
func (s *State) resolve(u string) string {
	u = strings.ReplaceAll(strings.TrimSpace(u), " ", "%20")
	switch {
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/") && s.origin != "":
		return strings.TrimRight(s.origin, "/") + u
	}
	return u
}

// fenced reports whether n is the outermost code element inside a pre.
func fenced(n *mdstream.Node) bool {
	return n.Depths[mdstream.TagPre] > 0 && n.Depths[mdstream.TagCode] == 1
}

// codeState collects the content of a code element. Its delimiters depend on
// the backticks inside, so the element is written once it closes.
type codeState struct {
	node   mdstream.NodeID
	fenced bool
	lang   string
	buf    []byte
	// saved is the pending newline count when the element was entered.
	saved int
}

func (c *codeState) write(content string, flush bool, pending *int) {
	if flush && *pending > 0 {
		switch {
		case len(c.buf) == 0:
		case c.fenced:
			for range *pending - trailingNewlines(c.buf) {
				c.buf = append(c.buf, '\n')
			}
		case !endsWithSpace(c.buf):
			c.buf = append(c.buf, ' ')
		}
		*pending = 0
	}
	c.buf = append(c.buf, content...)
}

func codeEnter(s *State, n *mdstream.Node) string {
	if s.code != nil || (!fenced(n) && n.Depths[mdstream.TagPre] > 0) {
		return ""
	}
	s.code = &codeState{node: n.ID, fenced: fenced(n), lang: codeLanguage(n), saved: s.pending}
	s.pending = 0
	return ""
}

// codeExit writes the opening delimiter and the collected content, and
// returns the closing delimiter.
func codeExit(s *State, n *mdstream.Node) string {
	c := s.code
	if c == nil || c.node != n.ID {
		return ""
	}
	s.code = nil
	s.pending = c.saved
	content := string(c.buf)
	if c.fenced {
		fence := backtickRun(content, 3)
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		s.write(n, fence+c.lang+"\n"+content, true)
		return fence
	}
	delim := backtickRun(content, 1)
	if strings.Contains(content, "`") {
		content = " " + content + " "
	}
	s.write(n, delim+content, true)
	return delim
}

// backtickRun returns a run of backticks longer than any run in content and
// at least least long.
func backtickRun(content string, least int) string {
	run, longest := 0, 0
	for i := range len(content) {
		if content[i] != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(least, longest+1))
}

func codeLanguage(n *mdstream.Node) string {
	class, _ := n.Attr("class")
	for _, c := range strings.Fields(class) {
		if lang, ok := strings.CutPrefix(c, "language-"); ok {
			return lang
		}
		if lang, ok := strings.CutPrefix(c, "lang-"); ok {
			return lang
		}
	}
	return ""
}

func listEnter(s *State, n *mdstream.Node) string {
	f := listFrame{node: n.ID, ordered: n.Tag == mdstream.TagOl, next: 1}
	if start, ok := n.Attr("start"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(start)); err == nil {
			f.next = v
		}
	}
	s.lists = append(s.lists, f)
	return ""
}

func listExit(s *State, n *mdstream.Node) string {
	if k := len(s.lists); k > 0 && s.lists[k-1].node == n.ID {
		s.lists = s.lists[:k-1]
	}
	return ""
}

func listItem(s *State, n *mdstream.Node) string {
	k := len(s.lists)
	if k == 0 {
		return "- "
	}
	f := &s.lists[k-1]
	indent := strings.Repeat("  ", k-1)
	if !f.ordered {
		return indent + "- "
	}
	if v, ok := n.Attr("value"); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			f.next = i
		}
	}
	marker := indent + strconv.Itoa(f.next) + ". "
	f.next++
	return marker
}

func checkbox(_ *State, n *mdstream.Node) string {
	if typ, _ := n.Attr("type"); !strings.EqualFold(typ, "checkbox") {
		return ""
	}
	if _, ok := n.Attr("checked"); ok {
		return "[x]"
	}
	return "[ ]"
}

func rule(_ *State, _ *mdstream.Node) string { return "---" }

func lineBreak(s *State, n *mdstream.Node) string {
	switch {
	case inCell(n):
		return "<br>"
	case n.Depths[mdstream.TagPre] > 0:
		return "\n"
	}
	s.pending = min(s.pending+1, maxNewlines)
	return ""
}

func inCell(n *mdstream.Node) bool {
	return n.Depths[mdstream.TagTd]+n.Depths[mdstream.TagTh] > 0
}
