package html

import (
	"strconv"
	"strings"

	"github.com/fwojciec/mdstream"
)

// tableState builds the outermost table. Tables nested inside a cell are
// rendered as literal HTML into the enclosing cell.
type tableState struct {
	rows   int
	width  int
	row    []string
	aligns []string
	cell   *cellState
	// comments found outside cells, rendered after the table.
	comments []string
}

type cellState struct {
	buf     []byte
	colspan int
	align   string
	// saved is the pending newline count when the cell was entered.
	saved int
}

// write appends content to the current cell. Requested newlines become a
// single space since a cell must stay on one line.
func (t *tableState) write(content string, pending *int) {
	c := t.cell
	if *pending > 0 {
		if len(c.buf) > 0 && !endsWithSpace(c.buf) {
			c.buf = append(c.buf, ' ')
		}
		*pending = 0
	}
	c.buf = append(c.buf, content...)
}

func outerTable(n *mdstream.Node) bool {
	return n.Depths[mdstream.TagTable] == 1
}

func tableEnter(s *State, n *mdstream.Node) string {
	if !outerTable(n) {
		return nestedTableOpen(s, n)
	}
	s.table = &tableState{}
	return ""
}

func tableExit(s *State, n *mdstream.Node) string {
	if !outerTable(n) {
		return nestedTableClose(s, n)
	}
	comments := s.table.comments
	s.table = nil
	if len(comments) == 0 {
		return ""
	}
	s.request(2)
	return strings.Join(comments, "\n")
}

func nestedTableOpen(_ *State, n *mdstream.Node) string {
	if outerTable(n) {
		return ""
	}
	return "<" + n.Name + ">"
}

func nestedTableClose(_ *State, n *mdstream.Node) string {
	if outerTable(n) {
		return ""
	}
	return "</" + n.Name + ">"
}

func rowEnter(s *State, n *mdstream.Node) string {
	if !outerTable(n) || s.table == nil {
		return nestedTableOpen(s, n)
	}
	s.table.row = s.table.row[:0]
	return ""
}

// rowExit renders the completed row. The first row is the header and is
// followed by the separator line built from the column alignments.
func rowExit(s *State, n *mdstream.Node) string {
	if !outerTable(n) || s.table == nil {
		return nestedTableClose(s, n)
	}
	t := s.table
	if len(t.row) == 0 {
		return ""
	}
	cells := t.row
	for len(cells) < t.width {
		cells = append(cells, "")
	}
	var sb strings.Builder
	sb.WriteString("| ")
	sb.WriteString(strings.Join(cells, " | "))
	sb.WriteString(" |")
	if t.rows == 0 {
		t.width = len(cells)
		sb.WriteString("\n|")
		for i := range cells {
			align := ""
			if i < len(t.aligns) {
				align = t.aligns[i]
			}
			sb.WriteString(" " + separator(align) + " |")
		}
	}
	t.rows++
	return sb.String()
}

func separator(align string) string {
	switch align {
	case "left":
		return ":---"
	case "center":
		return ":---:"
	case "right":
		return "---:"
	}
	return "---"
}

func cellEnter(s *State, n *mdstream.Node) string {
	if !outerTable(n) || s.table == nil {
		return nestedTableOpen(s, n)
	}
	c := &cellState{colspan: 1, align: cellAlign(n), saved: s.pending}
	if span, ok := n.Attr("colspan"); ok {
		if v, err := strconv.Atoi(strings.TrimSpace(span)); err == nil && v > 1 {
			c.colspan = min(v, 1000)
		}
	}
	s.table.cell = c
	s.pending = 0
	return ""
}

func cellExit(s *State, n *mdstream.Node) string {
	if !outerTable(n) || s.table == nil || s.table.cell == nil {
		return nestedTableClose(s, n)
	}
	t := s.table
	c := t.cell
	content := strings.TrimSpace(string(c.buf))
	content = strings.ReplaceAll(content, "\n", " ")
	content = strings.ReplaceAll(content, "|", `\|`)
	t.row = append(t.row, content)
	if t.rows == 0 {
		t.aligns = append(t.aligns, c.align)
	}
	for range c.colspan - 1 {
		t.row = append(t.row, "")
		if t.rows == 0 {
			t.aligns = append(t.aligns, c.align)
		}
	}
	t.cell = nil
	s.pending = c.saved
	return ""
}

// cellAlign reads the alignment from the align attribute or an inline
// text-align style.
func cellAlign(n *mdstream.Node) string {
	if a, ok := n.Attr("align"); ok {
		return strings.ToLower(strings.TrimSpace(a))
	}
	style, _ := n.Attr("style")
	for decl := range strings.SplitSeq(style, ";") {
		prop, val, ok := strings.Cut(decl, ":")
		if ok && strings.EqualFold(strings.TrimSpace(prop), "text-align") {
			return strings.ToLower(strings.TrimSpace(val))
		}
	}
	return ""
}
