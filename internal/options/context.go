// Package options holds the per-session configuration Context and the two
// name tables that populate it: argument-style names passed by the caller
// and dotted names read from a configuration file.
package options

import (
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/credential"
	"github.com/GoPowerDNS-Admin/mysqlauth/internal/strbuf"
)

// StringOption is an optional string value held in secure storage.
// The zero value is unset.
type StringOption struct {
	buf *strbuf.Buffer
}

// Set replaces the value. The previous value is wiped first.
func (o *StringOption) Set(value []byte) error {
	o.Clear()

	buf := strbuf.New(true)
	if err := buf.Append(value); err != nil {
		return err //nolint:wrapcheck
	}

	o.buf = buf

	return nil
}

// IsSet reports whether a value was assigned. An empty value is set.
func (o *StringOption) IsSet() bool { return o.buf != nil }

// String returns the value, or "" when unset.
func (o *StringOption) String() string {
	if o.buf == nil {
		return ""
	}

	return o.buf.String()
}

// Bytes returns the stored bytes without copying.
func (o *StringOption) Bytes() []byte {
	if o.buf == nil {
		return nil
	}

	return o.buf.Bytes()
}

// Clear wipes and unsets the value.
func (o *StringOption) Clear() {
	o.buf.Destroy()
	o.buf = nil
}

// Context carries every setting of one authentication session.
type Context struct {
	Host         StringOption
	Where        StringOption
	DB           StringOption
	User         StringOption
	Passwd       StringOption
	Table        StringOption
	UpdateTable  StringOption
	UserColumn   StringOption
	PasswdColumn StringOption
	StatColumn   StringOption

	CryptType   credential.Scheme
	UseMD5      bool
	UseSHA256   bool
	UseSHA512   bool
	UseBlowfish bool
	Rounds      int

	SQLLog         bool
	Verbose        bool
	LogTable       StringOption
	LogMsgColumn   StringOption
	LogPIDColumn   StringOption
	LogUserColumn  StringOption
	LogHostColumn  StringOption
	LogRHostColumn StringOption
	LogTimeColumn  StringOption
	ConfigFile     StringOption

	Use323Passwd      bool
	UseFirstPass      bool
	TryFirstPass      bool
	DisconnectEveryOp bool

	Select    StringOption
	SSLMode   StringOption
	SSLCert   StringOption
	SSLKey    StringOption
	SSLCA     StringOption
	SSLCAPath StringOption
	SSLCipher StringOption
}

// New returns a Context holding the defaults.
func New() *Context {
	c := &Context{
		Rounds:       -1,
		TryFirstPass: true,
	}

	// a single byte cannot fail to allocate
	_ = c.StatColumn.Set([]byte("0"))

	return c
}

func (c *Context) strings() []*StringOption {
	return []*StringOption{
		&c.Host, &c.Where, &c.DB, &c.User, &c.Passwd, &c.Table, &c.UpdateTable,
		&c.UserColumn, &c.PasswdColumn, &c.StatColumn,
		&c.LogTable, &c.LogMsgColumn, &c.LogPIDColumn, &c.LogUserColumn,
		&c.LogHostColumn, &c.LogRHostColumn, &c.LogTimeColumn, &c.ConfigFile,
		&c.Select, &c.SSLMode, &c.SSLCert, &c.SSLKey, &c.SSLCA, &c.SSLCAPath, &c.SSLCipher,
	}
}

// Destroy wipes every string setting. Calling it again is a no-op.
func (c *Context) Destroy() {
	for _, o := range c.strings() {
		o.Clear()
	}
}

// Lookup resolves an argument-style option name for query templates.
// Unknown names report false.
func (c *Context) Lookup(name string) (string, bool) {
	value, err := ArgRegistry.Get(c, name)
	if err != nil {
		return "", false
	}

	return value, true
}

// Params returns the hashing parameters selected by the context.
func (c *Context) Params() credential.Params {
	return credential.Params{
		Use323:        c.Use323Passwd,
		CryptMD5:      c.UseMD5,
		CryptSHA256:   c.UseSHA256,
		CryptSHA512:   c.UseSHA512,
		CryptBlowfish: c.UseBlowfish,
		Rounds:        c.Rounds,
	}
}
