package options

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
)

// Kind is the value type of an option.
type Kind int

// Option kinds.
const (
	KindString Kind = iota
	KindBool
	KindNumeric
	KindScheme
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumeric:
		return "numeric"
	case KindScheme:
		return "scheme"
	default:
		return "unknown"
	}
}

// Descriptor binds a name to one Context field.
type Descriptor struct {
	Name string
	Kind Kind

	// Sensitive values are never logged.
	Sensitive bool

	set func(c *Context, value []byte) error
	get func(c *Context) string
}

func stringOption(name string, field func(*Context) *StringOption) Descriptor {
	return Descriptor{
		Name: name,
		Kind: KindString,
		set: func(c *Context, value []byte) error {
			return field(c).Set(value)
		},
		get: func(c *Context) string {
			return field(c).String()
		},
	}
}

func secretOption(name string, field func(*Context) *StringOption) Descriptor {
	d := stringOption(name, field)
	d.Sensitive = true

	return d
}

func boolOption(name string, field func(*Context) *bool) Descriptor {
	return Descriptor{
		Name: name,
		Kind: KindBool,
		set: func(c *Context, value []byte) error {
			*field(c) = ParseBool(string(value))

			return nil
		},
		get: func(c *Context) string {
			return strconv.FormatBool(*field(c))
		},
	}
}

func numericOption(name string, field func(*Context) *int) Descriptor {
	return Descriptor{
		Name: name,
		Kind: KindNumeric,
		set: func(c *Context, value []byte) error {
			*field(c) = ParseNumeric(string(value))

			return nil
		},
		get: func(c *Context) string {
			return strconv.Itoa(*field(c))
		},
	}
}

func schemeOption(name string, field func(*Context) *credential.Scheme) Descriptor {
	return Descriptor{
		Name: name,
		Kind: KindScheme,
		set: func(c *Context, value []byte) error {
			s, err := credential.ParseScheme(string(value))
			*field(c) = s

			if err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidValue, err)
			}

			return nil
		},
		get: func(c *Context) string {
			return field(c).String()
		},
	}
}

// ParseBool treats "0", "N", "false" and "no" as false, ignoring case.
// Everything else, including the empty string, is true.
func ParseBool(value string) bool {
	switch strings.ToLower(value) {
	case "0", "n", "false", "no":
		return false
	default:
		return true
	}
}

// ParseNumeric converts the leading decimal integer of value, after optional
// blanks and sign. Input without digits yields 0; overflow saturates.
func ParseNumeric(value string) int {
	s := strings.TrimLeft(value, " \t\n\v\f\r")

	negative := false

	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}

	if end == 0 {
		return 0
	}

	digits := s[:end]
	if negative {
		digits = "-" + digits
	}

	// out of range input saturates at the bound, as strtol does
	n, _ := strconv.ParseInt(digits, 10, strconv.IntSize)

	return int(n)
}

// Registry is an immutable name table over Context fields.
type Registry struct {
	name    string
	entries []Descriptor
	index   map[string]int
}

func newRegistry(name string, entries ...Descriptor) *Registry {
	r := &Registry{
		name:    name,
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}

	for i, d := range entries {
		if _, dup := r.index[d.Name]; dup {
			panic("options: duplicate name " + d.Name + " in " + name)
		}

		r.index[d.Name] = i
	}

	return r
}

// Find returns the descriptor for name. Names are case-sensitive.
func (r *Registry) Find(name string) (Descriptor, bool) {
	i, ok := r.index[name]
	if !ok {
		return Descriptor{}, false
	}

	return r.entries[i], true
}

// Names lists the registered names in table order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.entries))
	for i, d := range r.entries {
		out[i] = d.Name
	}

	return out
}

// Descriptors returns a copy of the table.
func (r *Registry) Descriptors() []Descriptor {
	return append([]Descriptor(nil), r.entries...)
}

// Set assigns value to the field behind name. An invalid scheme name still
// resets the field to Plain before ErrInvalidValue is returned.
func (r *Registry) Set(c *Context, name string, value []byte) error {
	d, ok := r.Find(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	if err := d.set(c, value); err != nil {
		return fmt.Errorf("%s option %s: %w", r.name, name, err)
	}

	return nil
}

// Get renders the current value of name. Unset strings yield "".
func (r *Registry) Get(c *Context, name string) (string, error) {
	d, ok := r.Find(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownOption, name)
	}

	return d.get(c), nil
}

func host(c *Context) *StringOption           { return &c.Host }
func where(c *Context) *StringOption          { return &c.Where }
func db(c *Context) *StringOption             { return &c.DB }
func user(c *Context) *StringOption           { return &c.User }
func passwd(c *Context) *StringOption         { return &c.Passwd }
func table(c *Context) *StringOption          { return &c.Table }
func updateTable(c *Context) *StringOption    { return &c.UpdateTable }
func userColumn(c *Context) *StringOption     { return &c.UserColumn }
func passwdColumn(c *Context) *StringOption   { return &c.PasswdColumn }
func statColumn(c *Context) *StringOption     { return &c.StatColumn }
func cryptType(c *Context) *credential.Scheme { return &c.CryptType }
func useMD5(c *Context) *bool                 { return &c.UseMD5 }
func useSHA256(c *Context) *bool              { return &c.UseSHA256 }
func useSHA512(c *Context) *bool              { return &c.UseSHA512 }
func useBlowfish(c *Context) *bool            { return &c.UseBlowfish }
func rounds(c *Context) *int                  { return &c.Rounds }
func sqlLog(c *Context) *bool                 { return &c.SQLLog }
func verbose(c *Context) *bool                { return &c.Verbose }
func logTable(c *Context) *StringOption       { return &c.LogTable }
func logMsgColumn(c *Context) *StringOption   { return &c.LogMsgColumn }
func logPIDColumn(c *Context) *StringOption   { return &c.LogPIDColumn }
func logUserColumn(c *Context) *StringOption  { return &c.LogUserColumn }
func logHostColumn(c *Context) *StringOption  { return &c.LogHostColumn }
func logRHostColumn(c *Context) *StringOption { return &c.LogRHostColumn }
func logTimeColumn(c *Context) *StringOption  { return &c.LogTimeColumn }
func configFile(c *Context) *StringOption     { return &c.ConfigFile }
func use323Passwd(c *Context) *bool           { return &c.Use323Passwd }
func useFirstPass(c *Context) *bool           { return &c.UseFirstPass }
func tryFirstPass(c *Context) *bool           { return &c.TryFirstPass }
func disconnectEveryOp(c *Context) *bool      { return &c.DisconnectEveryOp }
func selectQuery(c *Context) *StringOption    { return &c.Select }
func sslMode(c *Context) *StringOption        { return &c.SSLMode }
func sslCert(c *Context) *StringOption        { return &c.SSLCert }
func sslKey(c *Context) *StringOption         { return &c.SSLKey }
func sslCA(c *Context) *StringOption          { return &c.SSLCA }
func sslCAPath(c *Context) *StringOption      { return &c.SSLCAPath }
func sslCipher(c *Context) *StringOption      { return &c.SSLCipher }

// ArgRegistry holds the names accepted in argument lists.
var ArgRegistry = newRegistry("argument",
	stringOption("host", host),
	stringOption("where", where),
	stringOption("db", db),
	stringOption("user", user),
	secretOption("passwd", passwd),
	stringOption("table", table),
	stringOption("update_table", updateTable),
	stringOption("usercolumn", userColumn),
	stringOption("passwdcolumn", passwdColumn),
	stringOption("statcolumn", statColumn),
	schemeOption("crypt", cryptType),
	boolOption("md5", useMD5),
	boolOption("sha256", useSHA256),
	boolOption("sha512", useSHA512),
	boolOption("blowfish", useBlowfish),
	numericOption("rounds", rounds),
	boolOption("sqllog", sqlLog),
	boolOption("verbose", verbose),
	stringOption("logtable", logTable),
	stringOption("logmsgcolumn", logMsgColumn),
	stringOption("logpidcolumn", logPIDColumn),
	stringOption("logusercolumn", logUserColumn),
	stringOption("loghostcolumn", logHostColumn),
	stringOption("logrhostcolumn", logRHostColumn),
	stringOption("logtimecolumn", logTimeColumn),
	stringOption("config_file", configFile),
	boolOption("use_323_passwd", use323Passwd),
	boolOption("use_first_pass", useFirstPass),
	boolOption("try_first_pass", tryFirstPass),
	boolOption("disconnect_every_op", disconnectEveryOp),
	boolOption("debug", verbose),
	stringOption("select", selectQuery),
	stringOption("ssl_mode", sslMode),
	stringOption("ssl_cert", sslCert),
	secretOption("ssl_key", sslKey),
	stringOption("ssl_ca", sslCA),
	stringOption("ssl_capath", sslCAPath),
	stringOption("ssl_cipher", sslCipher),
)

// FileRegistry holds the dotted names accepted in configuration files.
var FileRegistry = newRegistry("config",
	stringOption("users.host", host),
	stringOption("users.database", db),
	stringOption("users.db_user", user),
	secretOption("users.db_passwd", passwd),
	stringOption("users.where_clause", where),
	stringOption("users.table", table),
	stringOption("users.update_table", updateTable),
	stringOption("users.user_column", userColumn),
	stringOption("users.password_column", passwdColumn),
	stringOption("users.status_column", statColumn),
	schemeOption("users.password_crypt", cryptType),
	boolOption("users.use_md5", useMD5),
	boolOption("users.use_sha256", useSHA256),
	boolOption("users.use_sha512", useSHA512),
	boolOption("users.use_blowfish", useBlowfish),
	numericOption("users.rounds", rounds),
	boolOption("verbose", verbose),
	boolOption("log.enabled", sqlLog),
	stringOption("log.table", logTable),
	stringOption("log.message_column", logMsgColumn),
	stringOption("log.pid_column", logPIDColumn),
	stringOption("log.user_column", logUserColumn),
	stringOption("log.host_column", logHostColumn),
	stringOption("log.rhost_column", logRHostColumn),
	stringOption("log.time_column", logTimeColumn),
	boolOption("users.use_323_password", use323Passwd),
	boolOption("users.disconnect_every_operation", disconnectEveryOp),
	stringOption("users.select", selectQuery),
	stringOption("users.ssl_mode", sslMode),
	stringOption("users.ssl_cert", sslCert),
	secretOption("users.ssl_key", sslKey),
	stringOption("users.ssl_ca", sslCA),
	stringOption("users.ssl_capath", sslCAPath),
	stringOption("users.ssl_cipher", sslCipher),
)
