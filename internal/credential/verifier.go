package credential

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

// Result is the outcome of a verification.
type Result int

// Verification outcomes.
const (
	Success Result = iota
	Mismatch
	NoSuchUser
	Error
)

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Mismatch:
		return "mismatch"
	case NoSuchUser:
		return "no_such_user"
	default:
		return "error"
	}
}

// NullPolicy decides the verdict for a NULL stored password.
type NullPolicy int

// Null password policies.
const (
	NullMismatches NullPolicy = iota
	NullMatches
)

// Verifier dispatches to the Hasher registered for a scheme.
type Verifier struct {
	hashers map[Scheme]Hasher
}

// NewVerifier returns a verifier with all built-in schemes registered.
func NewVerifier(p Params) *Verifier {
	v := &Verifier{hashers: make(map[Scheme]Hasher)}

	v.Register(
		plainHasher{},
		unixCryptHasher{params: p},
		mysqlHasher{use323: p.Use323},
		newDigestHasher(MD5),
		newDigestHasher(SHA1),
		drupalHasher{},
		joomlaHasher{},
		sshaHasher{},
		newDigestHasher(SHA512),
		newDigestHasher(SHA256),
	)

	return v
}

// Register adds or replaces hashers.
func (v *Verifier) Register(hashers ...Hasher) {
	for _, h := range hashers {
		v.hashers[h.Scheme()] = h
	}
}

// Hasher returns the hasher for scheme.
func (v *Verifier) Hasher(scheme Scheme) (Hasher, error) {
	h, ok := v.hashers[scheme]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
	}

	return h, nil
}

// Verify checks plaintext against the stored column value. A NULL value is
// decided by policy alone. Malformed stored values are reported as Mismatch
// together with an error wrapping ErrMalformedHash.
func (v *Verifier) Verify(scheme Scheme, plaintext []byte, stored sql.NullString, policy NullPolicy) (Result, error) {
	result, err := v.verify(scheme, plaintext, stored, policy)

	observe(scheme, result)

	log.Debug().Str("scheme", scheme.String()).Str("result", result.String()).AnErr("cause", err).
		Msg("password verification")

	return result, err
}

func (v *Verifier) verify(scheme Scheme, plaintext []byte, stored sql.NullString, policy NullPolicy) (Result, error) {
	if !stored.Valid {
		if policy == NullMatches {
			return Success, nil
		}

		return Mismatch, nil
	}

	h, err := v.Hasher(scheme)
	if err != nil {
		return Error, err
	}

	ok, err := h.Check(plaintext, stored.String)

	switch {
	case errors.Is(err, ErrMalformedHash):
		return Mismatch, err
	case err != nil:
		return Error, err
	case ok:
		return Success, nil
	default:
		return Mismatch, nil
	}
}

// Generate returns a new stored value for plaintext.
func (v *Verifier) Generate(scheme Scheme, plaintext []byte) (string, error) {
	h, err := v.Hasher(scheme)
	if err != nil {
		return "", err
	}

	return h.Make(plaintext)
}
