// Package strbuf implements a growable byte string with an optional
// secure mode. Secure buffers zero every storage block they release, so
// credentials and query text never linger in memory that was handed back.
package strbuf

import "math"

// MaxCapacity caps the storage a single buffer may hold.
const MaxCapacity = 1 << 30

// Buffer is a growable byte string. The zero value is an empty, non-secure
// buffer ready to use.
type Buffer struct {
	data   []byte
	length int
	secure bool
}

// New returns an empty buffer. When secure is set every released storage
// block is zeroed.
func New(secure bool) *Buffer {
	return &Buffer{secure: secure}
}

// Secure reports whether the buffer zeroes released storage.
func (b *Buffer) Secure() bool { return b.secure }

// Len returns the number of bytes held.
func (b *Buffer) Len() int { return b.length }

// Cap returns the allocated capacity including the terminator slot.
func (b *Buffer) Cap() int { return len(b.data) }

// Bytes returns the content. The slice aliases the buffer storage and is
// only valid until the next mutation.
func (b *Buffer) Bytes() []byte { return b.data[:b.length] }

// String returns a copy of the content.
func (b *Buffer) String() string { return string(b.data[:b.length]) }

// Reserve makes room for extra more bytes plus the terminator. Capacity
// doubles from a floor of 1 until it exceeds the requirement. On failure
// the buffer is left unchanged.
func (b *Buffer) Reserve(extra int) error {
	if extra < 0 || b.length > math.MaxInt-extra-1 {
		return ErrOverflow
	}

	required := b.length + extra + 1
	if required < len(b.data) {
		return nil
	}

	size := max(len(b.data), 1)

	for {
		if size > MaxCapacity/2 {
			return ErrAlloc
		}

		size *= 2

		if size >= required {
			break
		}
	}

	grown := make([]byte, size)
	copy(grown, b.data[:b.length])

	if b.secure {
		clear(b.data)
	}

	b.data = grown

	return nil
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) error {
	if err := b.Reserve(len(p)); err != nil {
		return err
	}

	copy(b.data[b.length:], p)
	b.length += len(p)
	b.data[b.length] = 0

	return nil
}

// AppendString adds s to the end of the buffer.
func (b *Buffer) AppendString(s string) error {
	if err := b.Reserve(len(s)); err != nil {
		return err
	}

	copy(b.data[b.length:], s)
	b.length += len(s)
	b.data[b.length] = 0

	return nil
}

// AppendByte adds a single byte.
func (b *Buffer) AppendByte(c byte) error {
	if err := b.Reserve(1); err != nil {
		return err
	}

	b.data[b.length] = c
	b.length++
	b.data[b.length] = 0

	return nil
}

// Truncate shortens the buffer to n bytes.
func (b *Buffer) Truncate(n int) error {
	if n < 0 || n > b.length {
		return ErrTruncate
	}

	if b.secure {
		clear(b.data[n:b.length])
	}

	b.length = n

	if len(b.data) != 0 {
		b.data[n] = 0
	}

	return nil
}

// Destroy releases the storage, zeroing it first for secure buffers. The
// buffer may be reused afterwards.
func (b *Buffer) Destroy() {
	if b == nil {
		return
	}

	if b.secure {
		clear(b.data)
	}

	b.data = nil
	b.length = 0
}

// Wipe zeroes p in place.
func Wipe(p []byte) {
	clear(p)
}
