package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
)

// text renders a text node after the text plugins have run.
func (s *State) text(n *mdstream.Node) error {
	for _, h := range s.pipeline.text {
		res, err := h.hook.ProcessText(s, n)
		if err != nil {
			return pluginError(h.name, err)
		}
		if res.Skip {
			return nil
		}
		if res.Content != "" {
			n.Text = res.Content
			n.Whitespace = isWhitespace(res.Content)
		}
	}

	switch {
	case n.Within(mdstream.TagHead), n.Within(mdstream.TagTemplate),
		n.Within(mdstream.TagScript), n.Within(mdstream.TagStyle):
		return nil
	case s.table != nil && s.table.cell == nil:
		return nil
	}

	if n.Within(mdstream.TagPre) {
		s.write(n, s.preText(n), true)
		return nil
	}

	if n.Whitespace {
		parent := s.arena.get(n.Parent)
		if parent == nil || parent.Kind == mdstream.DocumentNode || s.pending > 0 {
			return nil
		}
		if tail := s.tail(n); atLineStart(tail) || endsWithSpace(tail) {
			return nil
		}
		s.write(n, " ", false)
		return nil
	}

	text := collapseWhitespace(n.Text)
	if tail := s.tail(n); s.pending > 0 || atLineStart(tail) || endsWithSpace(tail) {
		text = strings.TrimLeft(text, " ")
	}
	s.write(n, text, true)
	return nil
}

// preText drops the newline that directly follows an opening pre tag.
func (s *State) preText(n *mdstream.Node) string {
	if n.Index != 0 {
		return n.Text
	}
	parent := s.arena.get(n.Parent)
	if parent == nil {
		return n.Text
	}
	if parent.Tag == mdstream.TagCode && parent.Index == 0 {
		if gp := s.arena.get(parent.Parent); gp == nil || gp.Tag != mdstream.TagPre {
			return n.Text
		}
	} else if parent.Tag != mdstream.TagPre {
		return n.Text
	}
	if t, ok := strings.CutPrefix(n.Text, "\r\n"); ok {
		return t
	}
	return strings.TrimPrefix(n.Text, "\n")
}

// collapseWhitespace replaces every run of HTML whitespace with one space.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	space := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSpace(c) {
			if !space {
				sb.WriteByte(' ')
				space = true
			}
			continue
		}
		sb.WriteByte(c)
		space = false
	}
	return sb.String()
}
