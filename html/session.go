package html

import (
	"strings"
	"unicode"

	"github.com/fwojciec/mdstream"
)

// Session is one incremental conversion: text goes in with Write, finished
// Markdown comes out with Drain, and Close returns the remainder. A Session
// is not safe for concurrent use.
type Session struct {
	lex     LexState
	carry   string
	arena   *arena
	tree    *tree
	state   *State
	drained bool
	closed  bool
	err     error
}

// NewSession starts a conversion. The strategy's built-in plugins run before
// opts.Plugins.
func NewSession(opts mdstream.Options) *Session {
	a := &arena{}
	plugins := append(presets(opts.Strategy), opts.Plugins...)
	st := newState(opts.Origin, a, newPipeline(plugins))
	s := &Session{arena: a, state: st}
	s.tree = newTree(a, st.handle)
	s.err = s.tree.begin()
	return s
}

// Write feeds the next piece of HTML text. Incomplete constructs at the end
// of the text are kept until more text arrives.
func (s *Session) Write(text string) error {
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return mdstream.Errorf(mdstream.EINVALID, "session closed")
	}
	tokens, rest, next := Lex(s.carry+text, s.lex, false)
	s.carry, s.lex = rest, next
	return s.WriteTokens(tokens)
}

// WriteTokens feeds tokens lexed elsewhere, for example by a worker pool.
// The tokens must continue the document in order.
func (s *Session) WriteTokens(tokens []Token) error {
	if s.err != nil {
		return s.err
	}
	for _, tok := range tokens {
		if err := s.tree.push(tok); err != nil {
			s.err = err
			return err
		}
	}
	return nil
}

// Drain returns the Markdown that is final so far.
func (s *Session) Drain() string {
	if s.err != nil {
		return ""
	}
	s.drained = true
	return s.state.regions.drain(false)
}

// Close flushes the carried input, closes every open element and returns the
// remaining Markdown. Without a previous Drain this is the whole document.
func (s *Session) Close() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.closed {
		return "", mdstream.Errorf(mdstream.EINVALID, "session closed")
	}
	s.closed = true
	tokens, _, _ := Lex(s.carry, s.lex, true)
	s.carry, s.lex = "", LexState{}
	if err := s.WriteTokens(tokens); err != nil {
		return "", err
	}
	if err := s.tree.finish(); err != nil {
		s.err = err
		return "", err
	}
	if !s.drained {
		// Trailing whitespace is dropped here as in the final drain.
		return strings.TrimRightFunc(s.state.regions.assemble(), unicode.IsSpace), nil
	}
	return s.state.regions.drain(true), nil
}
