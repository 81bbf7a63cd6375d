// Package confparse reads the line oriented "name = value" configuration
// language used by the authentication module.
//
// Entries are separated by newlines, a semicolon may close an entry early
// and lines starting with '#' are comments. Values are taken verbatim up to
// the entry terminator.
package confparse

import (
	"errors"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/stream"
)

// Entry is a single name/value pair. Value aliases scanner storage that is
// wiped once the handler returns; handlers must copy what they keep.
type Entry struct {
	Name  string
	Value []byte
	Line  int
}

// Handler receives every entry in file order. A non-nil error aborts the parse.
type Handler func(Entry) error

type parseState int

const (
	expectName parseState = iota
	expectEqual
	expectValue
	afterValue
	afterSemicolon
)

// Parser drives a Scanner and dispatches entries to a Handler.
type Parser struct {
	handler Handler
	verbose bool
}

// NewParser returns a parser dispatching to h. Syntax errors are logged when
// verbose is set.
func NewParser(h Handler, verbose bool) *Parser {
	return &Parser{handler: h, verbose: verbose}
}

// Parse consumes in until end of input. An entry whose value is not
// terminated before end of input is dropped.
func (p *Parser) Parse(in *stream.Stream) error {
	scanner := NewScanner(in)
	defer scanner.Close()

	err := p.run(scanner)
	if errors.Is(err, io.EOF) {
		return nil
	}

	var syntaxErr *SyntaxError
	if p.verbose && errors.As(err, &syntaxErr) {
		log.Error().Int("line", syntaxErr.Line).Str("token", syntaxErr.Token.String()).Msg("configuration syntax error")
	}

	return err
}

func (p *Parser) run(scanner *Scanner) error {
	var (
		state = expectName
		line  = 1
		name  string
	)

	for {
		token, err := scanner.Next()
		if err != nil {
			return err
		}

		unexpected := &SyntaxError{Line: line, Token: token}

		switch state {
		case expectName:
			switch token {
			case TokenString:
				name = string(scanner.Image())
				state = expectEqual
			case TokenNewline, TokenComment:
				line++
			default:
				return unexpected
			}
		case expectEqual:
			if token != TokenEqual {
				return unexpected
			}

			state = expectValue
		case expectValue:
			switch token {
			case TokenSemicolon:
				if err := p.dispatch(name, nil, line); err != nil {
					return err
				}

				state = afterSemicolon
			case TokenNewline:
				if err := p.dispatch(name, nil, line); err != nil {
					return err
				}

				line++
				state = expectName
			case TokenString:
				if err := p.dispatch(name, scanner.Image(), line); err != nil {
					return err
				}

				state = afterValue
			default:
				return unexpected
			}
		case afterValue:
			switch token {
			case TokenSemicolon:
				state = afterSemicolon
			case TokenNewline:
				line++
				state = expectName
			default:
				return unexpected
			}
		case afterSemicolon:
			if token != TokenNewline {
				return unexpected
			}

			line++
			state = expectName
		}
	}
}

func (p *Parser) dispatch(name string, value []byte, line int) error {
	if p.handler == nil {
		return nil
	}

	if value == nil {
		value = []byte{}
	}

	return p.handler(Entry{Name: name, Value: value, Line: line})
}

// ParseFile parses the configuration file at path.
func ParseFile(path string, h Handler, verbose bool) error {
	in, err := stream.Open(path)
	if err != nil {
		if verbose {
			log.Error().Err(err).Str("path", path).Msg("unable to open configuration file")
		}

		return err
	}

	defer func() { _ = in.Close() }()

	return NewParser(h, verbose).Parse(in)
}
