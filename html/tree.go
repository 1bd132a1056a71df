package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
	nethtml "golang.org/x/net/html"
)

// tree turns tokens into enter and exit events. It keeps only the stack of
// open elements; closed nodes are released back to the arena after their
// exit event has been handled.
type tree struct {
	arena *arena
	stack []*mdstream.Node
	emit  func(mdstream.Event) error
	head  headState
}

// headState tracks the document head, whose end tag may be omitted.
type headState uint8

const (
	beforeHead headState = iota
	inHead
	afterHead
)

func newTree(a *arena, emit func(mdstream.Event) error) *tree {
	return &tree{arena: a, emit: emit}
}

// begin creates the document node and emits its enter event.
func (t *tree) begin() error {
	doc := t.arena.alloc()
	doc.Kind = mdstream.DocumentNode
	t.stack = append(t.stack, doc)
	return t.emit(mdstream.Event{Kind: mdstream.Enter, Node: doc})
}

func (t *tree) top() *mdstream.Node {
	return t.stack[len(t.stack)-1]
}

// push applies one token to the tree.
func (t *tree) push(tok Token) error {
	switch tok.Kind {
	case TextToken:
		// Text directly in the head, or before it, starts the body. Text in
		// head elements such as title does not.
		if !isWhitespace(tok.Data) && (t.head != inHead || t.top().Tag == mdstream.TagHead) {
			if err := t.bodyContent(); err != nil {
				return err
			}
		}
		return t.leaf(mdstream.TextNode, nethtml.UnescapeString(tok.Data))
	case CommentToken:
		return t.leaf(mdstream.CommentNode, tok.Data)
	case StartTagToken:
		return t.start(tok)
	case EndTagToken:
		return t.end(tok)
	}
	return nil
}

func (t *tree) start(tok Token) error {
	if err := t.headContent(tok.Tag); err != nil {
		return err
	}
	if err := t.autoClose(tok.Tag); err != nil {
		return err
	}
	if tok.Tag == mdstream.TagHead {
		t.head = inHead
	}

	parent := t.top()
	n := t.arena.alloc()
	n.Kind = mdstream.ElementNode
	n.Tag = tok.Tag
	n.Name = tok.Name
	n.Attrs = tok.Attrs
	t.attach(n, parent)
	n.Depths = parent.Depths
	n.Depths[n.Tag]++

	if err := t.emit(mdstream.Event{Kind: mdstream.Enter, Node: n}); err != nil {
		return err
	}
	if tok.Tag.IsVoid() || (tok.SelfClosing && tok.Tag == mdstream.TagUnknown) {
		return t.exit(n)
	}
	t.stack = append(t.stack, n)
	return nil
}

func (t *tree) leaf(kind mdstream.NodeKind, text string) error {
	parent := t.top()
	n := t.arena.alloc()
	n.Kind = kind
	n.Text = text
	n.Whitespace = kind == mdstream.TextNode && isWhitespace(text)
	n.Element = parent.ID
	t.attach(n, parent)
	n.Depths = parent.Depths
	if err := t.emit(mdstream.Event{Kind: mdstream.Enter, Node: n}); err != nil {
		return err
	}
	return t.exit(n)
}

func (t *tree) attach(n, parent *mdstream.Node) {
	n.Parent = parent.ID
	n.Depth = parent.Depth + 1
	n.Index = parent.ChildCount
	parent.ChildCount++
}

// end pops the stack down to and including the nearest open element with the
// same name. End tags without a matching open element are ignored.
func (t *tree) end(tok Token) error {
	for i := len(t.stack) - 1; i > 0; i-- {
		if t.stack[i].Name == tok.Name {
			return t.popTo(i)
		}
	}
	return nil
}

// popTo exits every element above and including stack index i.
func (t *tree) popTo(i int) error {
	for len(t.stack) > i {
		n := t.top()
		t.stack = t.stack[:len(t.stack)-1]
		if err := t.exit(n); err != nil {
			return err
		}
	}
	return nil
}

func (t *tree) exit(n *mdstream.Node) error {
	if n.Tag == mdstream.TagHead {
		t.head = afterHead
	}
	err := t.emit(mdstream.Event{Kind: mdstream.Exit, Node: n})
	t.arena.release(n)
	return err
}

// finish closes every open element in LIFO order, then the document.
func (t *tree) finish() error {
	if len(t.stack) == 0 {
		return nil
	}
	return t.popTo(0)
}

// headContent places metadata tags that arrive before any body content in
// the head, opening one if the document omitted it, and closes the head when
// body content starts.
func (t *tree) headContent(tag mdstream.TagID) error {
	switch {
	case tag == mdstream.TagHTML:
		return nil
	case tag == mdstream.TagHead:
		if t.head == beforeHead {
			return nil
		}
		return t.bodyContent()
	case isHeadTag(tag):
		if t.head != beforeHead {
			return nil
		}
		if top := t.top(); top.Kind != mdstream.DocumentNode && top.Tag != mdstream.TagHTML {
			t.head = afterHead
			return nil
		}
		return t.start(Token{Kind: StartTagToken, Tag: mdstream.TagHead, Name: "head"})
	}
	return t.bodyContent()
}

// bodyContent closes an open head, or marks the head as skipped.
func (t *tree) bodyContent() error {
	switch t.head {
	case beforeHead:
		t.head = afterHead
	case inHead:
		for i := len(t.stack) - 1; i > 0; i-- {
			if t.stack[i].Tag == mdstream.TagHead {
				return t.popTo(i)
			}
		}
		t.head = afterHead
	}
	return nil
}

func isHeadTag(tag mdstream.TagID) bool {
	switch tag {
	case mdstream.TagTitle, mdstream.TagMeta, mdstream.TagLink, mdstream.TagBase,
		mdstream.TagStyle, mdstream.TagScript, mdstream.TagNoscript, mdstream.TagTemplate:
		return true
	}
	return false
}

// autoClose implements the implied end tags needed for common malformed
// markup, such as unclosed list items, cells and paragraphs.
func (t *tree) autoClose(tag mdstream.TagID) error {
	switch tag {
	case mdstream.TagLi:
		return t.closeWithin(mdstream.TagLi, mdstream.TagUl, mdstream.TagOl, mdstream.TagMenu)
	case mdstream.TagDt, mdstream.TagDd:
		if err := t.closeWithin(mdstream.TagDt, mdstream.TagDl); err != nil {
			return err
		}
		return t.closeWithin(mdstream.TagDd, mdstream.TagDl)
	case mdstream.TagTd, mdstream.TagTh:
		if err := t.closeWithin(mdstream.TagTd, mdstream.TagTr, mdstream.TagTable); err != nil {
			return err
		}
		return t.closeWithin(mdstream.TagTh, mdstream.TagTr, mdstream.TagTable)
	case mdstream.TagTr:
		return t.closeWithin(mdstream.TagTr, mdstream.TagTable, mdstream.TagThead, mdstream.TagTbody, mdstream.TagTfoot)
	case mdstream.TagThead, mdstream.TagTbody, mdstream.TagTfoot:
		for _, section := range []mdstream.TagID{mdstream.TagThead, mdstream.TagTbody, mdstream.TagTfoot} {
			if err := t.closeWithin(section, mdstream.TagTable); err != nil {
				return err
			}
		}
	case mdstream.TagOption:
		if t.top().Tag == mdstream.TagOption {
			return t.popTo(len(t.stack) - 1)
		}
	}
	if closesParagraph(tag) && t.top().Tag == mdstream.TagP {
		return t.popTo(len(t.stack) - 1)
	}
	return nil
}

// closeWithin closes the nearest open tag element unless one of the
// boundary elements is found first.
func (t *tree) closeWithin(tag mdstream.TagID, boundary ...mdstream.TagID) error {
	for i := len(t.stack) - 1; i > 0; i-- {
		cur := t.stack[i].Tag
		if cur == tag {
			return t.popTo(i)
		}
		for _, b := range boundary {
			if cur == b {
				return nil
			}
		}
	}
	return nil
}

func closesParagraph(tag mdstream.TagID) bool {
	switch tag {
	case mdstream.TagP, mdstream.TagDiv, mdstream.TagUl, mdstream.TagOl,
		mdstream.TagDl, mdstream.TagPre, mdstream.TagTable, mdstream.TagBlockquote,
		mdstream.TagH1, mdstream.TagH2, mdstream.TagH3, mdstream.TagH4,
		mdstream.TagH5, mdstream.TagH6, mdstream.TagHr, mdstream.TagSection,
		mdstream.TagArticle, mdstream.TagAside, mdstream.TagNav, mdstream.TagHeader,
		mdstream.TagFooter, mdstream.TagMain, mdstream.TagFigure, mdstream.TagForm,
		mdstream.TagFieldset, mdstream.TagDetails, mdstream.TagAddress, mdstream.TagMenu:
		return true
	}
	return false
}

func isWhitespace(s string) bool {
	return strings.TrimLeft(s, " \t\n\r\f") == ""
}
