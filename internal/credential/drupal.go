package credential

import (
	"bytes"
	"crypto/md5" //nolint:gosec
	"crypto/sha512"
	"hash"
	"strings"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/uniuri"
)

const (
	drupalMinLog2    = 7
	drupalMaxLog2    = 30
	drupalLog2       = 14
	drupalSettingLen = 12
	drupalSaltLen    = 8
	drupalHashLength = 55

	// drupalUpgraded marks hashes migrated from plain MD5 storage: the
	// plaintext is replaced by its md5 hex before stretching.
	drupalUpgraded = "U"
)

// drupalHasher implements the Drupal 7 and phpass portable stretched hash.
// Settings "$S$" use SHA-512, "$P$" and "$H$" use MD5.
type drupalHasher struct{}

func (drupalHasher) Scheme() Scheme { return Drupal7 }

func (drupalHasher) Check(plaintext []byte, stored string) (bool, error) {
	var s scratch
	defer s.wipe()

	setting, key, prefix := stored, plaintext, ""

	if strings.HasPrefix(stored, drupalUpgraded+"$") {
		prefix = drupalUpgraded
		setting = stored[len(drupalUpgraded):]
		key = s.keep(hexLower(s.keep(sum(md5.New(), plaintext))))
	}

	computed, err := drupalCrypt(key, setting, &s)
	if err != nil {
		return false, err
	}

	if prefix != "" {
		computed = s.keep(append([]byte(prefix), computed...))
	}

	return equal(computed, []byte(stored)), nil
}

func (drupalHasher) Make(plaintext []byte) (string, error) {
	salt, err := uniuri.NewLenChars(drupalSaltLen, uniuri.Itoa64)
	if err != nil {
		return "", err
	}

	var s scratch
	defer s.wipe()

	setting := "$S$" + string(uniuri.Itoa64[drupalLog2]) + salt

	computed, err := drupalCrypt(plaintext, setting, &s)
	if err != nil {
		return "", err
	}

	return string(computed), nil
}

func drupalCrypt(key []byte, setting string, s *scratch) ([]byte, error) {
	if len(setting) < drupalSettingLen || setting[0] != '$' || setting[2] != '$' {
		return nil, ErrMalformedHash
	}

	var newHash func() hash.Hash

	switch setting[1] {
	case 'S':
		newHash = sha512.New
	case 'P', 'H':
		newHash = md5.New
	default:
		return nil, ErrMalformedHash
	}

	log2 := bytes.IndexByte(uniuri.Itoa64, setting[3])
	if log2 < drupalMinLog2 || log2 > drupalMaxLog2 {
		return nil, ErrMalformedHash
	}

	h := newHash()
	digest := s.keep(sum(h, []byte(setting[4:drupalSettingLen]), key))

	for i := 0; i < 1<<log2; i++ {
		h.Reset()
		h.Write(digest)
		h.Write(key)
		digest = h.Sum(digest[:0])
	}

	out := s.keep(make([]byte, 0, drupalSettingLen+(8*len(digest)+5)/6))
	out = append(out, setting[:drupalSettingLen]...)
	out = encode64(out, digest)

	if len(out) > drupalHashLength {
		out = out[:drupalHashLength]
	}

	return out, nil
}

// encode64 appends the phpass little-endian base64 packing of src to dst.
func encode64(dst, src []byte) []byte {
	itoa64 := uniuri.Itoa64

	for i := 0; i < len(src); {
		value := uint(src[i])
		i++

		dst = append(dst, itoa64[value&0x3f])

		if i < len(src) {
			value |= uint(src[i]) << 8
		}

		dst = append(dst, itoa64[(value>>6)&0x3f])

		if i >= len(src) {
			break
		}

		i++

		if i < len(src) {
			value |= uint(src[i]) << 16
		}

		dst = append(dst, itoa64[(value>>12)&0x3f])

		if i >= len(src) {
			break
		}

		i++

		dst = append(dst, itoa64[(value>>18)&0x3f])
	}

	return dst
}
