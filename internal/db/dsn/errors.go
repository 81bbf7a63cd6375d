package dsn

import "errors"

var (
	// ErrMissingUser is returned when the user option is unset.
	ErrMissingUser = errors.New(`required option "user" is not set`)

	// ErrMissingDB is returned when the db option is unset.
	ErrMissingDB = errors.New(`required option "db" is not set`)

	// ErrSSLMode is returned for an unrecognised ssl_mode.
	ErrSSLMode = errors.New("unsupported ssl_mode")

	// ErrTLSFiles is returned when certificate material cannot be loaded.
	ErrTLSFiles = errors.New("cannot load TLS files")

	// ErrCipher is returned for ssl_cipher entries unknown to crypto/tls.
	ErrCipher = errors.New("unknown TLS cipher suite")
)
