package stream

import "errors"

var (
	// ErrIO is returned for any failure of the underlying reader. It is
	// never returned for end of input, which is reported as io.EOF.
	ErrIO = errors.New("stream: I/O error")

	// ErrPushback is returned when a byte cannot be pushed back, either
	// because the previous operation was already a pushback or because a
	// buffer boundary rewind is still pending.
	ErrPushback = errors.New("stream: pushback not possible")
)
