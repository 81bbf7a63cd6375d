package credential

import "errors"

var (
	// ErrUnknownScheme is returned by ParseScheme for unrecognised names.
	ErrUnknownScheme = errors.New("unknown password scheme")

	// ErrUnsupportedScheme is returned when no hasher can handle the request.
	// Verification fails closed on it.
	ErrUnsupportedScheme = errors.New("unsupported password scheme")

	// ErrMalformedHash is returned together with a Mismatch result when the
	// stored value cannot be parsed for the configured scheme.
	ErrMalformedHash = errors.New("malformed stored password")
)
