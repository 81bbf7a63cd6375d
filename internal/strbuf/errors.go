package strbuf

import "errors"

var (
	// ErrAlloc is returned when a buffer would grow beyond MaxCapacity.
	ErrAlloc = errors.New("strbuf: allocation failure")

	// ErrOverflow is returned when the requested size overflows int.
	ErrOverflow = errors.New("strbuf: integer overflow")

	// ErrTruncate is returned when Truncate is asked to grow a buffer.
	ErrTruncate = errors.New("strbuf: truncate length exceeds buffer length")
)
