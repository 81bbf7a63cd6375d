package uniuri

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
)

var (
	// CryptChars is the salt alphabet of the crypt(3) family.
	CryptChars = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789./")

	// Itoa64 is the portable hash alphabet used by phpass and Drupal.
	Itoa64 = []byte("./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

	// PrintableChars holds every printable ASCII character except space.
	PrintableChars = printable()

	// ErrCharset is returned for alphabets with fewer than 2 or more than 256 characters.
	ErrCharset = errors.New("uniuri: wrong charset length")

	// Reader is the randomness source, replaceable in tests.
	Reader io.Reader = rand.Reader
)

const (
	maxBufLen      = 2048
	minRegenBufLen = 16
	maxByteValue   = 255
	byteRange      = 256
)

func printable() []byte {
	out := make([]byte, 0, '~'-'!'+1)
	for c := byte('!'); c <= '~'; c++ {
		out = append(out, c)
	}

	return out
}

// estimatedBufLen returns how many random bytes to request when values above
// maxByte are rejected.
func estimatedBufLen(need, maxByte int) int {
	return (need*maxByteValue + maxByte - 1) / maxByte
}

// Bytes returns n random bytes.
func Bytes(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(Reader, out); err != nil {
		return nil, fmt.Errorf("uniuri: reading random bytes: %w", err)
	}

	return out, nil
}

// NewLenChars returns a random string of the given length drawn from chars.
func NewLenChars(length int, chars []byte) (string, error) {
	if length <= 0 {
		return "", nil
	}

	clen := len(chars)
	if clen < 2 || clen > byteRange {
		return "", ErrCharset
	}

	// bytes above maxRb would bias the modulo
	maxRb := maxByteValue - (byteRange % clen)
	bufLen := min(max(estimatedBufLen(length, maxRb), length), maxBufLen)

	buf := make([]byte, bufLen)
	out := make([]byte, 0, length)

	defer clear(buf)

	for {
		if _, err := io.ReadFull(Reader, buf[:bufLen]); err != nil {
			return "", fmt.Errorf("uniuri: reading random bytes: %w", err)
		}

		for _, rb := range buf[:bufLen] {
			if int(rb) > maxRb {
				continue
			}

			out = append(out, chars[int(rb)%clen])
			if len(out) == length {
				return string(out), nil
			}
		}

		bufLen = min(max(estimatedBufLen(length-len(out), maxRb), minRegenBufLen), len(buf))
	}
}
