package credential

import (
	"crypto/sha1" //nolint:gosec
	"encoding/binary"
	"encoding/hex"
)

// mysqlHasher produces the server's PASSWORD() value: '*' followed by the
// uppercase hex of SHA1(SHA1(plaintext)), or the sixteen hex digit pre-4.1
// scramble when use323 is set.
type mysqlHasher struct {
	use323 bool
}

func (mysqlHasher) Scheme() Scheme { return MySQL }

func (h mysqlHasher) derive(plaintext []byte, s *scratch) []byte {
	if h.use323 {
		return s.keep(scramble323(plaintext))
	}

	first := s.keep(sum(sha1.New(), plaintext))
	second := s.keep(sum(sha1.New(), first))

	out := s.keep(make([]byte, 1+hex.EncodedLen(len(second))))
	out[0] = '*'
	hex.Encode(out[1:], second)

	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 'a' + 'A'
		}
	}

	return out
}

func (h mysqlHasher) Check(plaintext []byte, stored string) (bool, error) {
	var s scratch
	defer s.wipe()

	return equal(h.derive(plaintext, &s), []byte(stored)), nil
}

func (h mysqlHasher) Make(plaintext []byte) (string, error) {
	var s scratch
	defer s.wipe()

	return string(h.derive(plaintext, &s)), nil
}

// scramble323 is the OLD_PASSWORD() hash. Blanks and tabs are ignored.
func scramble323(plaintext []byte) []byte {
	var (
		nr  uint32 = 1345345333
		add uint32 = 7
		nr2 uint32 = 0x12345671
	)

	for _, c := range plaintext {
		if c == ' ' || c == '\t' {
			continue
		}

		tmp := uint32(c)
		nr ^= (((nr & 63) + add) * tmp) + (nr << 8)
		nr2 += (nr2 << 8) ^ nr
		add += tmp
	}

	var raw [8]byte

	binary.BigEndian.PutUint32(raw[:4], nr&0x7fffffff)
	binary.BigEndian.PutUint32(raw[4:], nr2&0x7fffffff)

	return hexLower(raw[:])
}
