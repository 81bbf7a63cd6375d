// Package credential verifies plaintext passwords against stored values in
// one of ten historical formats and produces new stored values for password
// changes.
//
// Every scheme is implemented by a Hasher registered with a Verifier. The
// Verifier dispatches on the configured Scheme, compares in constant time
// and wipes every intermediate digest before returning.
package credential

import (
	"fmt"
	"strings"
)

// Scheme selects how the stored password column is interpreted. The numeric
// values are part of the configuration format.
type Scheme int

// Supported schemes.
const (
	Plain Scheme = iota
	UnixCrypt
	MySQL
	MD5
	SHA1
	Drupal7
	Joomla15
	SSHA
	SHA512
	SHA256
)

var schemeNames = [...]string{
	Plain:     "plain",
	UnixCrypt: "Y",
	MySQL:     "mysql",
	MD5:       "md5",
	SHA1:      "sha1",
	Drupal7:   "drupal7",
	Joomla15:  "joomla15",
	SSHA:      "ssha",
	SHA512:    "sha512",
	SHA256:    "sha256",
}

// Schemes lists every supported scheme in numeric order.
func Schemes() []Scheme {
	out := make([]Scheme, len(schemeNames))
	for i := range out {
		out[i] = Scheme(i)
	}

	return out
}

// Valid reports whether s names a supported scheme.
func (s Scheme) Valid() bool {
	return s >= 0 && int(s) < len(schemeNames)
}

// String returns the canonical configuration name.
func (s Scheme) String() string {
	if !s.Valid() {
		return fmt.Sprintf("scheme(%d)", int(s))
	}

	return schemeNames[s]
}

// ParseScheme accepts a scheme name, case-insensitively, or its digit.
// Unknown values yield Plain together with ErrUnknownScheme.
func ParseScheme(value string) (Scheme, error) {
	for i, name := range schemeNames {
		if value == fmt.Sprint(i) || strings.EqualFold(value, name) {
			return Scheme(i), nil
		}
	}

	return Plain, fmt.Errorf("%w: %q", ErrUnknownScheme, value)
}
