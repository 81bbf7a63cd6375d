package credential

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/GehirnInc/crypt"
	"github.com/GehirnInc/crypt/md5_crypt"
	"github.com/GehirnInc/crypt/sha256_crypt"
	"github.com/GehirnInc/crypt/sha512_crypt"
	libcrypt "github.com/amoghe/go-crypt"
	"golang.org/x/crypto/bcrypt"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/uniuri"
)

const (
	bcryptDefaultCost = 5
	shaMinRounds      = 1000
	shaMaxRounds      = 9999999
	shaSaltLength     = 16
	md5SaltLength     = 8
	desSaltLength     = 2
)

// unixCryptHasher handles crypt(3) style values. The algorithm is taken from
// the stored value's prefix; Params only steer new values. Values without an
// md5, sha or blowfish prefix (traditional and extended DES) go to the
// platform crypt.
type unixCryptHasher struct {
	params Params
}

func (unixCryptHasher) Scheme() Scheme { return UnixCrypt }

func crypterFor(stored string) (crypt.Crypter, bool) {
	switch {
	case strings.HasPrefix(stored, "$1$"):
		return md5_crypt.New(), true
	case strings.HasPrefix(stored, "$5$"):
		return sha256_crypt.New(), true
	case strings.HasPrefix(stored, "$6$"):
		return sha512_crypt.New(), true
	default:
		return nil, false
	}
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}

func (unixCryptHasher) Check(plaintext []byte, stored string) (bool, error) {
	if isBcrypt(stored) {
		err := bcrypt.CompareHashAndPassword([]byte(stored), plaintext)

		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
		}
	}

	c, ok := crypterFor(stored)
	if !ok {
		computed, err := platformCrypt(plaintext, stored)
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
		}

		return equal([]byte(computed), []byte(stored)), nil
	}

	computed, err := c.Generate(plaintext, []byte(stored))
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
	}

	return equal([]byte(computed), []byte(stored)), nil
}

// platformCrypt runs the C library crypt on salt, which may be a whole
// stored value.
func platformCrypt(plaintext []byte, salt string) (string, error) {
	out, err := libcrypt.Crypt(string(plaintext), salt)
	if err != nil {
		return "", fmt.Errorf("crypt: %w", err)
	}

	return out, nil
}

// Make picks the strongest selected algorithm: blowfish, sha512, sha256,
// md5, then traditional DES.
func (h unixCryptHasher) Make(plaintext []byte) (string, error) {
	p := h.params

	switch {
	case p.CryptBlowfish:
		cost := bcryptDefaultCost
		if p.Rounds >= bcrypt.MinCost && p.Rounds <= bcrypt.MaxCost {
			cost = p.Rounds
		}

		out, err := bcrypt.GenerateFromPassword(plaintext, cost)
		if err != nil {
			return "", fmt.Errorf("bcrypt: %w", err)
		}

		return string(out), nil
	case p.CryptSHA512, p.CryptSHA256:
		prefix, c := "$5$", sha256_crypt.New()
		if p.CryptSHA512 {
			prefix, c = "$6$", sha512_crypt.New()
		}

		if p.Rounds >= shaMinRounds {
			prefix += "rounds=" + strconv.Itoa(min(p.Rounds, shaMaxRounds)) + "$"
		}

		return generate(c, plaintext, prefix, shaSaltLength)
	case p.CryptMD5:
		return generate(md5_crypt.New(), plaintext, "$1$", md5SaltLength)
	default:
		salt, err := uniuri.NewLenChars(desSaltLength, uniuri.CryptChars)
		if err != nil {
			return "", err //nolint:wrapcheck
		}

		return platformCrypt(plaintext, salt)
	}
}

func generate(c crypt.Crypter, plaintext []byte, prefix string, saltLength int) (string, error) {
	salt, err := uniuri.NewLenChars(saltLength, uniuri.CryptChars)
	if err != nil {
		return "", err
	}

	out, err := c.Generate(plaintext, []byte(prefix+salt+"$"))
	if err != nil {
		return "", fmt.Errorf("crypt: %w", err)
	}

	return out, nil
}
