package html

import (
	"strings"

	"github.com/fwojciec/mdstream"
	nethtml "golang.org/x/net/html"
)

// TokenKind identifies the lexical construct a Token was read from.
type TokenKind uint8

// Token kinds.
const (
	TextToken TokenKind = iota
	StartTagToken
	EndTagToken
	CommentToken
	DoctypeToken
)

// Token is one complete lexical construct.
type Token struct {
	Kind        TokenKind
	Tag         mdstream.TagID
	Name        string
	Attrs       map[string]string
	Data        string
	SelfClosing bool
}

// LexState is the carry-over state between calls to Lex.
type LexState struct {
	// RawText is set while inside a script or style element whose content
	// is skipped until the matching end tag.
	RawText mdstream.TagID
}

// Lex scans input and returns the complete tokens it contains, the
// unconsumed tail and the state to pass to the next call. The tail must be
// prepended to the next chunk. When final is set the whole input is
// consumed: trailing text becomes a token and incomplete constructs are
// dropped.
//
// Lex is a pure function and safe for concurrent use on independent inputs.
// For any split of a document, lexing the pieces in order while carrying the
// tail and state yields the same tokens as lexing the document at once.
func Lex(input string, st LexState, final bool) (tokens []Token, rest string, next LexState) {
	i := 0
	if st.RawText != mdstream.TagUnknown {
		j, ok := skipRawText(input, st.RawText)
		if !ok {
			if final {
				return nil, "", LexState{}
			}
			return nil, input[j:], st
		}
		i = j
	}

	textStart := i
	for i < len(input) {
		lt := strings.IndexByte(input[i:], '<')
		if lt < 0 {
			break
		}
		j := i + lt
		tok, end, status := lexMarkup(input, j)
		switch status {
		case notMarkup:
			i = j + 1
			continue
		case incomplete:
			if final {
				if j+1 == len(input) {
					// A lone '<' at the very end is text.
					i = len(input)
					continue
				}
				tokens = appendText(tokens, input[textStart:j])
				return tokens, "", LexState{}
			}
			return tokens, input[textStart:], LexState{}
		}

		tokens = appendText(tokens, input[textStart:j])
		if status == complete {
			tokens = append(tokens, tok)
		}
		i = end
		textStart = end

		if tok.Kind == StartTagToken && isRawText(tok.Tag) {
			k, ok := skipRawText(input[i:], tok.Tag)
			if !ok {
				if final {
					return tokens, "", LexState{}
				}
				return tokens, input[i+k:], LexState{RawText: tok.Tag}
			}
			i += k
			textStart = i
		}
	}

	if final {
		return appendText(tokens, input[textStart:]), "", LexState{}
	}
	return tokens, input[textStart:], LexState{}
}

func appendText(tokens []Token, s string) []Token {
	if s == "" {
		return tokens
	}
	return append(tokens, Token{Kind: TextToken, Data: s})
}

func isRawText(t mdstream.TagID) bool {
	return t == mdstream.TagScript || t == mdstream.TagStyle
}

// skipRawText finds the end tag closing a raw text element. It returns the
// offset of the end tag. When the end tag is not found it returns the offset
// from which scanning must resume once more input arrives.
func skipRawText(input string, t mdstream.TagID) (int, bool) {
	closer := "</" + t.String()
	for i := 0; i < len(input); {
		j := strings.Index(input[i:], "</")
		if j < 0 {
			break
		}
		j += i
		if len(input)-j < len(closer) {
			return j, false
		}
		if strings.EqualFold(input[j:j+len(closer)], closer) {
			if j+len(closer) == len(input) {
				return j, false
			}
			switch input[j+len(closer)] {
			case '>', '/', ' ', '\t', '\n', '\r', '\f':
				return j, true
			}
		}
		i = j + 2
	}
	// Keep a trailing '<' that may start the end tag in the next chunk.
	if strings.HasSuffix(input, "<") {
		return len(input) - 1, false
	}
	return len(input), false
}

type markupStatus uint8

const (
	notMarkup markupStatus = iota
	incomplete
	complete
	ignored
)

// lexMarkup reads the construct starting with '<' at input[i].
func lexMarkup(input string, i int) (Token, int, markupStatus) {
	if i+1 >= len(input) {
		return Token{}, 0, incomplete
	}
	c := input[i+1]
	switch {
	case c == '!':
		return lexBang(input, i)
	case c == '?':
		end := strings.IndexByte(input[i:], '>')
		if end < 0 {
			return Token{}, 0, incomplete
		}
		return Token{}, i + end + 1, ignored
	case c == '/':
		return lexEndTag(input, i)
	case isASCIILetter(c):
		return lexStartTag(input, i)
	}
	return Token{}, 0, notMarkup
}

func lexBang(input string, i int) (Token, int, markupStatus) {
	rest := input[i:]
	if strings.HasPrefix(rest, "<!--") {
		end := strings.Index(rest[4:], "-->")
		if end < 0 {
			return Token{}, 0, incomplete
		}
		return Token{Kind: CommentToken, Data: rest[4 : 4+end]}, i + 4 + end + 3, complete
	}
	if len(rest) < 4 && strings.HasPrefix("<!--", rest) {
		return Token{}, 0, incomplete
	}
	end := strings.IndexByte(rest, '>')
	if end < 0 {
		return Token{}, 0, incomplete
	}
	body := rest[2:end]
	if len(body) >= 7 && strings.EqualFold(body[:7], "doctype") {
		return Token{Kind: DoctypeToken, Data: strings.TrimSpace(body[7:])}, i + end + 1, complete
	}
	return Token{}, i + end + 1, ignored
}

func lexEndTag(input string, i int) (Token, int, markupStatus) {
	rest := input[i:]
	if len(rest) < 3 {
		return Token{}, 0, incomplete
	}
	end := strings.IndexByte(rest, '>')
	if !isASCIILetter(rest[2]) {
		if end < 0 {
			return Token{}, 0, incomplete
		}
		// "</>" and bogus end tags are dropped.
		return Token{}, i + end + 1, ignored
	}
	if end < 0 {
		return Token{}, 0, incomplete
	}
	n := 2
	for n < end && !isTagNameEnd(rest[n]) {
		n++
	}
	name := strings.ToLower(rest[2:n])
	return Token{Kind: EndTagToken, Tag: mdstream.LookupTag(name), Name: name}, i + end + 1, complete
}

func lexStartTag(input string, i int) (Token, int, markupStatus) {
	rest := input[i:]
	n := 1
	for n < len(rest) && !isTagNameEnd(rest[n]) {
		n++
	}
	if n == len(rest) {
		return Token{}, 0, incomplete
	}
	name := strings.ToLower(rest[1:n])
	tok := Token{Kind: StartTagToken, Tag: mdstream.LookupTag(name), Name: name}

	p := n
	for {
		for p < len(rest) && isSpace(rest[p]) {
			p++
		}
		if p == len(rest) {
			return Token{}, 0, incomplete
		}
		switch rest[p] {
		case '>':
			return tok, i + p + 1, complete
		case '/':
			p++
			if p < len(rest) && rest[p] == '>' {
				tok.SelfClosing = true
				return tok, i + p + 1, complete
			}
			continue
		}

		start := p
		for p < len(rest) && !isSpace(rest[p]) && rest[p] != '=' && rest[p] != '>' && rest[p] != '/' {
			p++
		}
		if p == start {
			// A stray '=' before any attribute name.
			p++
			continue
		}
		attr := strings.ToLower(rest[start:p])
		for p < len(rest) && isSpace(rest[p]) {
			p++
		}
		if p == len(rest) {
			return Token{}, 0, incomplete
		}
		val := ""
		if rest[p] == '=' {
			p++
			for p < len(rest) && isSpace(rest[p]) {
				p++
			}
			if p == len(rest) {
				return Token{}, 0, incomplete
			}
			switch q := rest[p]; q {
			case '"', '\'':
				end := strings.IndexByte(rest[p+1:], q)
				if end < 0 {
					return Token{}, 0, incomplete
				}
				val = rest[p+1 : p+1+end]
				p += end + 2
			default:
				vs := p
				for p < len(rest) && !isSpace(rest[p]) && rest[p] != '>' {
					p++
				}
				if p == len(rest) {
					return Token{}, 0, incomplete
				}
				val = rest[vs:p]
			}
		}
		if tok.Attrs == nil {
			tok.Attrs = make(map[string]string, 4)
		}
		if _, dup := tok.Attrs[attr]; !dup {
			tok.Attrs[attr] = nethtml.UnescapeString(val)
		}
	}
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isTagNameEnd(c byte) bool {
	return isSpace(c) || c == '>' || c == '/'
}
