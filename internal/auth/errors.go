package auth

import "errors"

var (
	// ErrNoSuchUser is returned when the user query returns no row.
	ErrNoSuchUser = errors.New("user not found")

	// ErrMismatch is returned when the password does not match the stored value.
	ErrMismatch = errors.New("password mismatch")

	// ErrAmbiguousUser is returned when the user query returns more than one row.
	// This typically indicates a missing unique index or a too broad where clause.
	ErrAmbiguousUser = errors.New("multiple users found")

	// ErrMissingOption is returned when an option required by an operation is unset.
	ErrMissingOption = errors.New("required option is not set")

	// ErrNoUser is returned when an operation is called without a user name.
	ErrNoUser = errors.New("no user specified")

	// ErrNoAuthTok is returned when no password could be obtained.
	ErrNoAuthTok = errors.New("authentication token unavailable")

	// ErrAuthTokMismatch is returned when the new password and its confirmation differ.
	ErrAuthTokMismatch = errors.New("new passwords do not match")

	// ErrAccountExpired is returned when the account is marked expired.
	ErrAccountExpired = errors.New("account expired")

	// ErrAuthTokExpired is returned when the password is marked expired.
	ErrAuthTokExpired = errors.New("password expired")

	// ErrShortResult is returned when a query yields fewer columns than needed.
	ErrShortResult = errors.New("query returned too few columns")
)
