package credential

import (
	"crypto/sha1" //nolint:gosec
	"encoding/base64"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/uniuri"
)

const sshaSaltLength = 4

// sshaHasher stores base64(SHA1(plaintext || salt) || salt).
type sshaHasher struct{}

func (sshaHasher) Scheme() Scheme { return SSHA }

func (sshaHasher) encode(plaintext, salt []byte, s *scratch) []byte {
	digest := s.keep(sum(sha1.New(), plaintext, salt))
	raw := s.keep(append(digest, salt...))

	out := s.keep(make([]byte, base64.StdEncoding.EncodedLen(len(raw))))
	base64.StdEncoding.Encode(out, raw)

	return out
}

func (h sshaHasher) Check(plaintext []byte, stored string) (bool, error) {
	var s scratch
	defer s.wipe()

	raw, err := base64.StdEncoding.DecodeString(stored)
	if err != nil || len(raw) < sha1.Size {
		return false, ErrMalformedHash
	}

	s.keep(raw)

	return equal(h.encode(plaintext, raw[sha1.Size:], &s), []byte(stored)), nil
}

func (h sshaHasher) Make(plaintext []byte) (string, error) {
	salt, err := uniuri.Bytes(sshaSaltLength)
	if err != nil {
		return "", err
	}

	var s scratch
	defer s.wipe()

	return string(h.encode(plaintext, salt, &s)), nil
}
