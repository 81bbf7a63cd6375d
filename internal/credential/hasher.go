package credential

import (
	"crypto/subtle"
	"encoding/hex"
	"hash"
)

// Hasher implements one password scheme.
type Hasher interface {
	// Check reports whether plaintext matches stored. A structurally
	// invalid stored value yields ErrMalformedHash.
	Check(plaintext []byte, stored string) (bool, error)

	// Make returns a new stored value for plaintext.
	Make(plaintext []byte) (string, error)

	// Scheme returns the scheme implemented by the hasher.
	Scheme() Scheme
}

// Params carries the options that influence hashing.
type Params struct {
	// Use323 selects the pre-4.1 scramble for the MySQL scheme.
	Use323 bool

	// Salt selection for new crypt(3) values, strongest wins.
	CryptMD5      bool
	CryptSHA256   bool
	CryptSHA512   bool
	CryptBlowfish bool

	// Rounds is the cost for blowfish or the round count for sha crypt.
	// Values out of range fall back to the algorithm default.
	Rounds int
}

// scratch collects intermediate buffers so they can be wiped on every path.
type scratch [][]byte

func (s *scratch) keep(p []byte) []byte {
	*s = append(*s, p)

	return p
}

func (s *scratch) wipe() {
	for _, p := range *s {
		clear(p[:cap(p)])
	}

	*s = nil
}

// equal compares in constant time.
func equal(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}

// sum hashes the concatenation of parts.
func sum(h hash.Hash, parts ...[]byte) []byte {
	h.Reset()

	for _, p := range parts {
		h.Write(p)
	}

	return h.Sum(nil)
}

// hexLower encodes p as lowercase hex.
func hexLower(p []byte) []byte {
	out := make([]byte, hex.EncodedLen(len(p)))
	hex.Encode(out, p)

	return out
}
