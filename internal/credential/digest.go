package credential

import (
	"crypto/md5" //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// digestHasher stores the lowercase hex digest of the plaintext.
type digestHasher struct {
	scheme  Scheme
	newHash func() hash.Hash
}

func newDigestHasher(scheme Scheme) digestHasher {
	h := digestHasher{scheme: scheme}

	switch scheme {
	case MD5:
		h.newHash = md5.New
	case SHA1:
		h.newHash = sha1.New
	case SHA256:
		h.newHash = sha256.New
	default:
		h.newHash = sha512.New
	}

	return h
}

func (h digestHasher) Scheme() Scheme { return h.scheme }

func (h digestHasher) derive(plaintext []byte, s *scratch) []byte {
	return s.keep(hexLower(s.keep(sum(h.newHash(), plaintext))))
}

func (h digestHasher) Check(plaintext []byte, stored string) (bool, error) {
	var s scratch
	defer s.wipe()

	return equal(h.derive(plaintext, &s), []byte(stored)), nil
}

func (h digestHasher) Make(plaintext []byte) (string, error) {
	var s scratch
	defer s.wipe()

	return string(h.derive(plaintext, &s)), nil
}
