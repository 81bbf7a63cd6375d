// Package stream provides a buffered byte reader with single byte pushback.
//
// Input is read into one of two fixed size buffers at a time. When a byte is
// pushed back right after a refill the stream rewinds into the tail of the
// other buffer and remembers where the suspended buffer ended, so the next
// reads continue seamlessly into it.
package stream

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// BufferSize is the size of each of the two read buffers.
const BufferSize = 2048

// Set is a small byte set used by SkipWhile and ReadUntil.
type Set string

func (s Set) has(c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}

	return false
}

// Stream is a buffered reader over an io.Reader.
type Stream struct {
	r      io.Reader
	closer io.Closer

	buf    [2][BufferSize]byte
	active int
	start  int
	pos    int
	end    int

	// pushback is the end of the suspended buffer while a boundary rewind
	// is pending, -1 otherwise.
	pushback int
	eof      bool
	ungot    bool
}

// New returns a stream reading from r.
func New(r io.Reader) *Stream {
	s := &Stream{r: r, pushback: -1}

	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}

	return s
}

// Open opens the file at path for reading.
func Open(path string) (*Stream, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	return New(f), nil
}

// Close releases the underlying reader if it is closable.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}

	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	return nil
}

// fill switches to the other buffer, either restoring the suspended one or
// refilling it from the reader.
func (s *Stream) fill() error {
	next := 1 - s.active

	if s.pushback >= 0 {
		s.active = next
		s.start, s.pos, s.end = 0, 0, s.pushback
		s.pushback = -1

		return nil
	}

	if s.eof {
		return io.EOF
	}

	n, err := s.r.Read(s.buf[next][:])
	for n == 0 && err == nil {
		n, err = s.r.Read(s.buf[next][:])
	}

	if n == 0 {
		if errors.Is(err, io.EOF) {
			s.eof = true

			return io.EOF
		}

		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	s.active = next
	s.start, s.pos, s.end = 0, 0, n

	return nil
}

func (s *Stream) ensure() error {
	for s.pos >= s.end {
		if err := s.fill(); err != nil {
			return err
		}
	}

	return nil
}

// GetByte returns the next byte or io.EOF at end of input.
func (s *Stream) GetByte() (byte, error) {
	s.ungot = false

	if err := s.ensure(); err != nil {
		return 0, err
	}

	c := s.buf[s.active][s.pos]
	s.pos++

	return c, nil
}

// UngetByte pushes c back so the next GetByte returns it. Two consecutive
// calls without a read in between fail.
func (s *Stream) UngetByte(c byte) error {
	if s.ungot {
		return ErrPushback
	}

	if s.pos == s.start {
		if s.pushback >= 0 {
			return ErrPushback
		}

		s.pushback = s.end
		s.active = 1 - s.active
		s.start, s.pos, s.end = 0, BufferSize, BufferSize
	}

	s.pos--
	s.buf[s.active][s.pos] = c
	s.ungot = true

	return nil
}

// SkipWhile consumes bytes as long as they belong to set.
func (s *Stream) SkipWhile(set Set) error {
	s.ungot = false

	for {
		if err := s.ensure(); err != nil {
			return err
		}

		if !set.has(s.buf[s.active][s.pos]) {
			return nil
		}

		s.pos++
	}
}

// ReadUntil appends bytes to dst until one belonging to set is found. The
// delimiter is returned but left in the stream.
func (s *Stream) ReadUntil(set Set, dst *strbuf.Buffer) (byte, error) {
	s.ungot = false

	for {
		if err := s.ensure(); err != nil {
			return 0, err
		}

		chunk := s.buf[s.active][s.pos:s.end]

		for i, c := range chunk {
			if set.has(c) {
				if err := dst.Append(chunk[:i]); err != nil {
					return 0, err
				}

				s.pos += i

				return c, nil
			}
		}

		if err := dst.Append(chunk); err != nil {
			return 0, err
		}

		s.pos = s.end
	}
}
