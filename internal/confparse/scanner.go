package confparse

import (
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/stream"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// TokenKind identifies a lexical token of the configuration language.
type TokenKind int

// Token kinds.
const (
	TokenEqual TokenKind = iota
	TokenNewline
	TokenString
	TokenSemicolon
	TokenComment
)

var tokenNames = [...]string{
	TokenEqual:     "=",
	TokenNewline:   "<NEWLINE>",
	TokenString:    "<STRING_LITERAL>",
	TokenSemicolon: ";",
	TokenComment:   "<COMMENT>",
}

func (k TokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "<UNKNOWN>"
	}

	return tokenNames[k]
}

const (
	blanks          stream.Set = " \t"
	lineEnd         stream.Set = "\n\r"
	nameDelimiters  stream.Set = "=; \t\n\r"
	valueDelimiters stream.Set = ";\n\r"
)

type scanState int

const (
	stateLineStart scanState = iota
	stateName
	stateValue
)

// Scanner splits a stream into tokens. The token image is held in a secure
// buffer that is reused for every token and wiped on Close.
type Scanner struct {
	in    *stream.Stream
	state scanState
	image *strbuf.Buffer
}

// NewScanner returns a scanner positioned at the start of a line.
func NewScanner(in *stream.Stream) *Scanner {
	return &Scanner{
		in:    in,
		state: stateLineStart,
		image: strbuf.New(true),
	}
}

// Image returns the text of the last token. It is only valid until the next
// call to Next.
func (s *Scanner) Image() []byte {
	return s.image.Bytes()
}

// Close wipes the token image.
func (s *Scanner) Close() {
	s.image.Destroy()
}

// Next scans the next token. End of input is reported as io.EOF; any error
// ends the current token.
func (s *Scanner) Next() (TokenKind, error) {
	if s.state == stateLineStart {
		if err := s.image.Truncate(0); err != nil {
			return 0, err
		}

		c, err := s.in.GetByte()
		if err != nil {
			return 0, err
		}

		if c == '#' {
			return s.comment()
		}

		if err := s.in.UngetByte(c); err != nil {
			return 0, err
		}

		s.state = stateName
	}

	if err := s.in.SkipWhile(blanks); err != nil {
		return 0, err
	}

	if err := s.image.Truncate(0); err != nil {
		return 0, err
	}

	c, err := s.in.GetByte()
	if err != nil {
		return 0, err
	}

	if err := s.image.AppendByte(c); err != nil {
		return 0, err
	}

	switch c {
	case ';':
		s.state = stateName

		return TokenSemicolon, nil
	case '\r':
		if err := s.crlf(true); err != nil {
			return 0, err
		}

		s.state = stateLineStart

		return TokenNewline, nil
	case '\n':
		s.state = stateLineStart

		return TokenNewline, nil
	}

	if s.state == stateName {
		if c == '=' {
			s.state = stateValue

			return TokenEqual, nil
		}

		if _, err := s.in.ReadUntil(nameDelimiters, s.image); err != nil {
			return 0, err
		}

		return TokenString, nil
	}

	// values run to the end of the entry, inner and trailing blanks included
	if _, err := s.in.ReadUntil(valueDelimiters, s.image); err != nil {
		return 0, err
	}

	return TokenString, nil
}

func (s *Scanner) comment() (TokenKind, error) {
	if err := s.image.AppendByte('#'); err != nil {
		return 0, err
	}

	if _, err := s.in.ReadUntil(lineEnd, s.image); err != nil {
		return 0, err
	}

	c, err := s.in.GetByte()
	if err != nil {
		return 0, err
	}

	if c == '\r' {
		if err := s.crlf(false); err != nil {
			return 0, err
		}
	}

	return TokenComment, nil
}

// crlf consumes the LF of a CRLF pair. A CR followed by anything else is a
// terminator on its own and the byte is pushed back.
func (s *Scanner) crlf(keep bool) error {
	c, err := s.in.GetByte()
	if err != nil {
		return err
	}

	if c != '\n' {
		return s.in.UngetByte(c)
	}

	if keep {
		return s.image.AppendByte(c)
	}

	return nil
}
