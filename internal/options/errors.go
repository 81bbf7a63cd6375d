package options

import "errors"

var (
	// ErrUnknownOption is returned for names missing from a registry.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidValue is returned when a value cannot be applied to its option.
	ErrInvalidValue = errors.New("invalid option value")
)
