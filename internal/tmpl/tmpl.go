// Package tmpl expands query templates.
//
// Directives:
//
//	%s       next argument, escaped
//	%S       next argument, raw
//	%u       next argument as an unsigned decimal
//	%{name}  option value, escaped
//	%[name]  option value, raw
//
// Any other character after '%' is copied together with the '%'.
package tmpl

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// ErrArgument is returned when arguments do not match the directives.
var ErrArgument = errors.New("template argument mismatch")

// Lookup resolves an option name. Unknown names report false.
type Lookup func(name string) (string, bool)

// Escaper quotes a value for embedding in a string literal.
type Escaper func(value string) string

type state int

const (
	literal state = iota
	percent
	braceName
	bracketName
)

// Format expands template. The result is a secure buffer when secure is set.
// A nil escape copies values unchanged. On failure no buffer is returned and
// the partial result is wiped.
func Format(template string, lookup Lookup, escape Escaper, secure bool, args ...any) (*strbuf.Buffer, error) {
	if escape == nil {
		escape = func(value string) string { return value }
	}

	out := strbuf.New(secure)

	if err := expand(out, template, lookup, escape, args); err != nil {
		out.Destroy()

		return nil, err
	}

	return out, nil
}

func expand(out *strbuf.Buffer, template string, lookup Lookup, escape Escaper, args []any) error {
	var (
		st        = literal
		nameStart int
		next      int
	)

	for i := 0; i < len(template); i++ {
		c := template[i]

		switch st {
		case literal:
			if c == '%' {
				st = percent

				continue
			}

			if err := out.AppendByte(c); err != nil {
				return err //nolint:wrapcheck
			}
		case percent:
			st = literal

			var err error

			switch c {
			case '{':
				st, nameStart = braceName, i+1
			case '[':
				st, nameStart = bracketName, i+1
			case 's', 'S':
				var s string

				if s, err = stringArg(args, next); err == nil {
					next++

					if c == 's' {
						s = escape(s)
					}

					err = out.AppendString(s)
				}
			case 'u':
				var n uint64

				if n, err = unsignedArg(args, next); err == nil {
					next++
					err = out.AppendString(strconv.FormatUint(n, 10))
				}
			default:
				if err = out.AppendByte('%'); err == nil {
					err = out.AppendByte(c)
				}
			}

			if err != nil {
				return err
			}
		case braceName, bracketName:
			closing := byte('}')
			if st == bracketName {
				closing = ']'
			}

			// the first name byte is never a terminator
			if c != closing || i == nameStart {
				continue
			}

			value := option(lookup, template[nameStart:i])
			if st == braceName {
				value = escape(value)
			}

			if err := out.AppendString(value); err != nil {
				return err //nolint:wrapcheck
			}

			st = literal
		}
	}

	// an unterminated directive is kept as written
	switch st {
	case percent:
		return out.AppendByte('%') //nolint:wrapcheck
	case braceName, bracketName:
		return out.AppendString(template[nameStart-2:]) //nolint:wrapcheck
	default:
		return nil
	}
}

func option(lookup Lookup, name string) string {
	if lookup == nil {
		return ""
	}

	value, ok := lookup(name)
	if !ok {
		return ""
	}

	return value
}

func stringArg(args []any, i int) (string, error) {
	if i >= len(args) {
		return "", fmt.Errorf("%w: missing argument %d", ErrArgument, i+1)
	}

	switch v := args[i].(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	default:
		return "", fmt.Errorf("%w: argument %d is %T, want string", ErrArgument, i+1, args[i])
	}
}

func unsignedArg(args []any, i int) (uint64, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrArgument, i+1)
	}

	var signed int64

	switch v := args[i].(type) {
	case uint:
		return uint64(v), nil
	case uint32:
		return uint64(v), nil
	case uint64:
		return v, nil
	case int:
		signed = int64(v)
	case int32:
		signed = int64(v)
	case int64:
		signed = v
	default:
		return 0, fmt.Errorf("%w: argument %d is %T, want unsigned", ErrArgument, i+1, args[i])
	}

	if signed < 0 {
		return 0, fmt.Errorf("%w: argument %d is negative", ErrArgument, i+1)
	}

	return uint64(signed), nil
}
