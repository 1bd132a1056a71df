package html

import (
	"context"
	"fmt"
	"io"
	"iter"
	"unicode/utf8"

	"github.com/fwojciec/mdstream"
)

// readSize is the buffer size used to read streams.
const readSize = 32 << 10

// Stream converts bytes as they arrive. It keeps an incomplete UTF-8
// sequence at the end of one chunk until the next chunk completes it.
type Stream struct {
	session *Session
	partial []byte
}

// NewStream returns a Stream for one conversion.
func NewStream(opts mdstream.Options) *Stream {
	return &Stream{session: NewSession(opts)}
}

// Feed consumes the next chunk and returns the Markdown that became final.
func (s *Stream) Feed(chunk []byte) (string, error) {
	buf := chunk
	if len(s.partial) > 0 {
		buf = append(s.partial, chunk...)
		s.partial = nil
	}
	cut := incompleteSuffix(buf)
	if cut < len(buf) {
		s.partial = append([]byte(nil), buf[cut:]...)
		buf = buf[:cut]
	}
	if err := s.session.Write(string(buf)); err != nil {
		return "", err
	}
	return s.session.Drain(), nil
}

// Close ends the input and returns the remaining Markdown.
func (s *Stream) Close() (string, error) {
	if len(s.partial) > 0 {
		if err := s.session.Write(string(s.partial)); err != nil {
			return "", err
		}
		s.partial = nil
	}
	return s.session.Close()
}

// incompleteSuffix returns the offset of a UTF-8 sequence truncated at the
// end of b, or len(b) if b ends on a rune boundary.
func incompleteSuffix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		c := b[i]
		if c < utf8.RuneSelf {
			return len(b)
		}
		if utf8.RuneStart(c) {
			if !utf8.FullRune(b[i:]) {
				return i
			}
			return len(b)
		}
	}
	return len(b)
}

// ConvertStream converts HTML read from r and yields Markdown chunks as soon
// as they are final. If r implements io.Closer it is closed on every exit
// path.
func ConvertStream(ctx context.Context, r io.Reader, opts mdstream.Options) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if r == nil {
			yield("", mdstream.Errorf(mdstream.EINVALID, "invalid stream: reader is nil"))
			return
		}
		if c, ok := r.(io.Closer); ok {
			defer c.Close()
		}
		if err := opts.Validate(); err != nil {
			yield("", err)
			return
		}

		st := NewStream(opts)
		buf := make([]byte, readSize)
		for {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			n, err := r.Read(buf)
			if n > 0 {
				out, ferr := st.Feed(buf[:n])
				if ferr != nil {
					yield("", ferr)
					return
				}
				if out != "" && !yield(out, nil) {
					return
				}
			}
			if err == io.EOF {
				break
			}
			if err != nil {
				yield("", fmt.Errorf("read stream: %w", err))
				return
			}
		}

		out, err := st.Close()
		if err != nil {
			yield("", err)
			return
		}
		if out != "" {
			yield(out, nil)
		}
	}
}
