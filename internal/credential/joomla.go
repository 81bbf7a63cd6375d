package credential

import (
	"crypto/md5" //nolint:gosec
	"strings"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/uniuri"
)

const joomlaSaltLength = 32

// joomlaHasher stores "md5hex(plaintext || salt):salt".
type joomlaHasher struct{}

func (joomlaHasher) Scheme() Scheme { return Joomla15 }

func (joomlaHasher) Check(plaintext []byte, stored string) (bool, error) {
	digest, salt, ok := strings.Cut(stored, ":")
	if !ok {
		return false, ErrMalformedHash
	}

	var s scratch
	defer s.wipe()

	computed := s.keep(hexLower(s.keep(sum(md5.New(), plaintext, []byte(salt)))))

	return equal(computed, []byte(digest)), nil
}

func (joomlaHasher) Make(plaintext []byte) (string, error) {
	salt, err := uniuri.NewLenChars(joomlaSaltLength, uniuri.PrintableChars)
	if err != nil {
		return "", err
	}

	var s scratch
	defer s.wipe()

	computed := s.keep(hexLower(s.keep(sum(md5.New(), plaintext, []byte(salt)))))

	return string(computed) + ":" + salt, nil
}
