package options

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/confparse"
)

const redacted = "********"

// ParseArgs applies "name=value" or bare "name" arguments in order. Unknown
// names are skipped. changed reports whether any option was assigned, in
// which case an open database connection no longer matches the context.
func ParseArgs(c *Context, args []string) (changed bool, err error) {
	for _, arg := range args {
		name, value, _ := strings.Cut(arg, "=")

		err = ArgRegistry.Set(c, name, []byte(value))

		switch {
		case errors.Is(err, ErrUnknownOption):
			if c.Verbose {
				log.Warn().Str("option", name).Msg("unknown option")
			}

			continue
		case err != nil:
			return changed, err
		}

		changed = true

		logAssignment(c, ArgRegistry, name, []byte(value), 0)
	}

	return changed, nil
}

// ReadConfigFile applies every entry of the configuration file at path.
// Entries with unknown names are skipped, any other failure stops reading.
func ReadConfigFile(c *Context, path string) error {
	return confparse.ParseFile(path, func(e confparse.Entry) error { //nolint:wrapcheck
		err := FileRegistry.Set(c, e.Name, e.Value)
		if errors.Is(err, ErrUnknownOption) {
			if c.Verbose {
				log.Warn().Str("option", e.Name).Int("line", e.Line).Str("file", path).
					Msg("unknown option")
			}

			return nil
		}

		if err != nil {
			return err
		}

		logAssignment(c, FileRegistry, e.Name, e.Value, e.Line)

		return nil
	}, c.Verbose)
}

func logAssignment(c *Context, r *Registry, name string, value []byte, line int) {
	if !c.Verbose {
		return
	}

	ev := log.Debug().Str("registry", r.name).Str("option", name)

	if d, _ := r.Find(name); d.Sensitive {
		ev = ev.Str("value", redacted)
	} else {
		ev = ev.Bytes("value", value)
	}

	if line > 0 {
		ev = ev.Int("line", line)
	}

	ev.Msg("option set")
}
